package repository

import "errors"

// Sentinel kinds for progress store errors.
var (
	ErrClosed    = errors.New("progress store closed")
	ErrEmptyKey  = errors.New("progress key is empty")
	ErrNoPath    = errors.New("progress store path is required")
	ErrOpenStore = errors.New("open progress store")
)
