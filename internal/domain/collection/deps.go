// Package collection implements the collection upgrade-eligibility engine:
// per-entry tier ladders that watch item levels, decide when the next tier
// may be taken, and report the stat delta of every advance.
package collection

import (
	"context"

	"github.com/okian/codex/internal/domain/model"
)

// LevelSource reports the current levels of every item of one kind and
// rarity. An empty slice means no such items exist.
type LevelSource interface {
	Levels(ctx context.Context, kind model.ItemKind, rarity model.Rarity) ([]int, error)
}

// ProgressStore is the durable key/value store entries persist their tier in.
type ProgressStore interface {
	Save(ctx context.Context, key string, value int) error
	Load(ctx context.Context, key string, def int) (int, error)
}

// Ledger receives signed stat changes.
type Ledger interface {
	Push(ctx context.Context, change model.StatChange) error
}

// Listener observes entry notifications. Calls are synchronous and happen on
// the caller's thread of control.
type Listener interface {
	EligibilityChanged(ctx context.Context, entryID int, eligible bool)
	TierAdvanced(ctx context.Context, entryID, from, to int)
}

// observer is how an entry reports upwards to its registry.
type observer interface {
	eligibilityChanged(ctx context.Context, e *Entry)
	tierAdvanced(ctx context.Context, e *Entry, from, to int)
}
