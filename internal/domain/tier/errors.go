package tier

import "errors"

// Sentinel kinds for tier table errors.
var (
	ErrInvalidTable = errors.New("invalid tier table")
	ErrOutOfRange   = errors.New("tier out of range")
)
