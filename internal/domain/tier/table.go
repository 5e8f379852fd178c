// Package tier holds the immutable, ordered ladder of tier records for one
// collection entry.
package tier

import (
	"fmt"
	"sort"

	"github.com/okian/codex/internal/domain/model"
)

// Table is a read-only ladder sorted by tier ascending. Tier values are
// exactly 0..Len()-1, so a record's tier is also its index.
type Table struct {
	entryID int
	records []model.TierRecord
}

// Build sorts records by tier and validates the ladder.
func Build(entryID int, records []model.TierRecord) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: entry %d has no tiers", ErrInvalidTable, entryID)
	}

	sorted := make([]model.TierRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tier < sorted[j].Tier })

	for i, rec := range sorted {
		if rec.EntryID != entryID {
			return nil, fmt.Errorf("%w: entry %d got record of entry %d", ErrInvalidTable, entryID, rec.EntryID)
		}
		if rec.Tier != i {
			return nil, fmt.Errorf("%w: entry %d tiers are not contiguous from 0 (want %d, got %d)", ErrInvalidTable, entryID, i, rec.Tier)
		}
		if !rec.Kind.TierKind() {
			return nil, fmt.Errorf("%w: entry %d tier %d has kind %s", ErrInvalidTable, entryID, i, rec.Kind)
		}
		if !rec.Rarity.Valid() || !rec.Stat.Valid() {
			return nil, fmt.Errorf("%w: entry %d tier %d has unknown rarity or stat", ErrInvalidTable, entryID, i)
		}
	}

	return &Table{entryID: entryID, records: sorted}, nil
}

// EntryID returns the entry this ladder belongs to.
func (t *Table) EntryID() int { return t.entryID }

// Len returns the number of tiers.
func (t *Table) Len() int { return len(t.records) }

// Ceiling returns the highest valid tier index.
func (t *Table) Ceiling() int { return len(t.records) - 1 }

// RecordAt returns the record for tier i.
func (t *Table) RecordAt(i int) (model.TierRecord, error) {
	if i < 0 || i > t.Ceiling() {
		return model.TierRecord{}, fmt.Errorf("%w: entry %d tier %d not in [0, %d]", ErrOutOfRange, t.entryID, i, t.Ceiling())
	}
	return t.records[i], nil
}

// Records returns a copy of the ladder.
func (t *Table) Records() []model.TierRecord {
	out := make([]model.TierRecord, len(t.records))
	copy(out, t.records)
	return out
}
