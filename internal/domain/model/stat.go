package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// StatType names a player stat a collection tier contributes to.
type StatType int

// Stat types. The order matters: SkillDamage..GoldIncrease form the percent
// range of the status ledger.
const (
	StatAttack StatType = iota
	StatHealth
	StatDefense
	StatCritDamage
	StatDamageReduction
	StatCritChance
	StatAttackSpeed
	StatMoveSpeed
	StatSkillDamage
	StatBossDamage
	StatGoldIncrease
)

var statNames = [...]string{ //nolint:gochecknoglobals // lookup table
	StatAttack:          "ATK",
	StatHealth:          "HP",
	StatDefense:         "DEF",
	StatCritDamage:      "CRIT_DMG",
	StatDamageReduction: "DMG_REDU",
	StatCritChance:      "CRIT_CH",
	StatAttackSpeed:     "ATK_SPD",
	StatMoveSpeed:       "MOV_SPD",
	StatSkillDamage:     "SKILL_DMG",
	StatBossDamage:      "BOSS_DMG",
	StatGoldIncrease:    "GOLD_INCREASE",
}

func (s StatType) String() string {
	if s.Valid() {
		return statNames[s]
	}
	return fmt.Sprintf("StatType(%d)", int(s))
}

// Valid reports whether s is a known stat.
func (s StatType) Valid() bool {
	return s >= StatAttack && s <= StatGoldIncrease
}

// ParseStatType parses the table name of a stat.
func ParseStatType(s string) (StatType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range statNames {
		if name == s {
			return StatType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: stat type %q", ErrUnknownValue, s)
}

// IsFraction reports whether the stat is carried on the float channel.
func (s StatType) IsFraction() bool {
	switch s {
	case StatDamageReduction, StatCritChance, StatAttackSpeed, StatMoveSpeed:
		return true
	}
	return false
}

// IsPercent reports whether an integer stat is applied as a percent bonus.
func (s StatType) IsPercent() bool {
	return s >= StatSkillDamage && s <= StatGoldIncrease
}

// fractionScale converts the table's integer column into a fraction.
const fractionScale = 0.01

// StatChange is one signed mutation for the status ledger. Exactly one of
// Value and Fraction is meaningful, selected by IsFraction.
type StatChange struct {
	Stat       StatType `json:"stat"`
	Value      int      `json:"value,omitempty"`
	Fraction   float64  `json:"fraction,omitempty"`
	IsFraction bool     `json:"is_fraction"`
}

// Negate returns the change that exactly reverses c on the same channel.
func (c StatChange) Negate() StatChange {
	if c.IsFraction {
		c.Fraction = -c.Fraction
	} else {
		c.Value = -c.Value
	}
	return c
}

// IsZero reports whether c carries no stat at all.
func (c StatChange) IsZero() bool {
	return c == StatChange{}
}

// Format renders the change the way the collection bar shows it: "+12",
// "+5%" for percent stats and "+1.5%" for fractions.
func (c StatChange) Format() string {
	switch {
	case c.IsFraction:
		pct := math.Round(c.Fraction*100*100) / 100
		return "+" + strconv.FormatFloat(pct, 'f', -1, 64) + "%"
	case c.Stat.IsPercent():
		return "+" + strconv.Itoa(c.Value) + "%"
	default:
		return "+" + strconv.Itoa(c.Value)
	}
}

// StatDelta is what an advance asks the ledger to do. Retract is nil when the
// entry advanced from tier 0, which never contributed a stat.
type StatDelta struct {
	Retract *StatChange `json:"retract,omitempty"`
	Apply   StatChange  `json:"apply"`
}
