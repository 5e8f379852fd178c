package collection

import "errors"

// Sentinel kinds for collection errors. Advance preconditions are checked
// before any state changes, so ErrAlreadyMaxed and ErrNotEligible never leave
// a partial mutation behind.
var (
	ErrUnknownEntry = errors.New("unknown collection entry")
	ErrAlreadyMaxed = errors.New("collection entry already at ceiling")
	ErrNotEligible  = errors.New("collection entry not eligible")
	ErrPersist      = errors.New("collection progress persistence failed")
	ErrLevelQuery   = errors.New("item level query failed")
	ErrLedger       = errors.New("status ledger update failed")
)
