package config

import "errors"

var (
	// ErrLoadConfig wraps failures reading the CODEX_CONFIG file or the
	// CODEX_ environment.
	ErrLoadConfig = errors.New("codex config unreadable")

	// ErrInvalidConfig wraps a loaded config the collection service cannot
	// start with.
	ErrInvalidConfig = errors.New("codex config rejected")
)
