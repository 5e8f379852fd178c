package model

// TierRecord is one rung of a collection ladder. It is a value type and
// never changes after NewTierRecord.
type TierRecord struct {
	EntryID        int
	Tier           int
	Category       Category
	Kind           ItemKind
	Rarity         Rarity
	LevelCondition int
	Stat           StatType
	Value          int
	Fraction       float64
}

// NewTierRecord builds a record from a table row. raw is the row's integer
// stat column; fractional stats keep raw*0.01 in Fraction and leave Value
// zero, every other stat keeps raw in Value.
func NewTierRecord(entryID, tier int, kind ItemKind, rarity Rarity, levelCondition int, stat StatType, raw int) TierRecord {
	r := TierRecord{
		EntryID:        entryID,
		Tier:           tier,
		Category:       kind.Category(),
		Kind:           kind,
		Rarity:         rarity,
		LevelCondition: levelCondition,
		Stat:           stat,
	}
	if stat.IsFraction() {
		r.Fraction = float64(raw) * fractionScale
	} else {
		r.Value = raw
	}
	return r
}

// Contribution is the positive stat change this tier grants while active.
func (r TierRecord) Contribution() StatChange {
	if r.Stat.IsFraction() {
		return StatChange{Stat: r.Stat, Fraction: r.Fraction, IsFraction: true}
	}
	return StatChange{Stat: r.Stat, Value: r.Value}
}
