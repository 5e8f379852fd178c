package inventory

import "errors"

// Sentinel kinds for inventory errors.
var (
	ErrItemNotFound = errors.New("item not found")
	ErrMaxLevel     = errors.New("item already at max level")
	ErrInvalidItem  = errors.New("invalid item")
)
