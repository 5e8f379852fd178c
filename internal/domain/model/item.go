// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Category groups item kinds into the two notification channels.
type Category int

// Categories.
const (
	CategoryEquipment Category = iota
	CategorySkill
)

// Categories lists every category in channel order.
var Categories = []Category{CategoryEquipment, CategorySkill} //nolint:gochecknoglobals // closed enum listing

func (c Category) String() string {
	switch c {
	case CategoryEquipment:
		return "Equipment"
	case CategorySkill:
		return "Skill"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// ParseCategory parses a category name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equipment":
		return CategoryEquipment, nil
	case "skill":
		return CategorySkill, nil
	}
	return 0, fmt.Errorf("%w: category %q", ErrUnknownValue, s)
}

// ItemKind is the closed set of item variants an inventory reports.
type ItemKind int

// Item kinds. BuffSkill only ever appears on items; tiers use ActiveSkill
// to cover both active and buff skills.
const (
	KindWeapon ItemKind = iota
	KindArmor
	KindActiveSkill
	KindBuffSkill
	KindPassiveSkill
)

func (k ItemKind) String() string {
	switch k {
	case KindWeapon:
		return "Weapon"
	case KindArmor:
		return "Armor"
	case KindActiveSkill:
		return "Active"
	case KindBuffSkill:
		return "Buff"
	case KindPassiveSkill:
		return "Passive"
	default:
		return fmt.Sprintf("ItemKind(%d)", int(k))
	}
}

// ParseItemKind parses a kind name as it appears in tier tables.
func ParseItemKind(s string) (ItemKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weapon":
		return KindWeapon, nil
	case "armor":
		return KindArmor, nil
	case "active", "activeskill":
		return KindActiveSkill, nil
	case "buff", "buffskill":
		return KindBuffSkill, nil
	case "passive", "passiveskill":
		return KindPassiveSkill, nil
	}
	return 0, fmt.Errorf("%w: item kind %q", ErrUnknownValue, s)
}

// Valid reports whether k is a known kind.
func (k ItemKind) Valid() bool {
	return k >= KindWeapon && k <= KindPassiveSkill
}

// Category returns the channel this kind publishes on.
func (k ItemKind) Category() Category {
	switch k {
	case KindActiveSkill, KindBuffSkill, KindPassiveSkill:
		return CategorySkill
	default:
		return CategoryEquipment
	}
}

// TierKind reports whether k may label a tier record.
func (k ItemKind) TierKind() bool {
	return k.Valid() && k != KindBuffSkill
}

// Accepts reports whether items of kind other count towards a tier of kind k.
func (k ItemKind) Accepts(other ItemKind) bool {
	if k == KindActiveSkill {
		return other == KindActiveSkill || other == KindBuffSkill
	}
	return k == other
}

// Group returns the tier kind that covers items of kind k.
func (k ItemKind) Group() ItemKind {
	if k == KindBuffSkill {
		return KindActiveSkill
	}
	return k
}

// Members lists the item kinds a tier of kind k accepts.
func (k ItemKind) Members() []ItemKind {
	if k == KindActiveSkill {
		return []ItemKind{KindActiveSkill, KindBuffSkill}
	}
	return []ItemKind{k}
}

// Rarity is the item rarity a tier is conditioned on.
type Rarity int

// Rarities, int-coded in tier tables.
const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
	RarityMythic
)

func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "Common"
	case RarityUncommon:
		return "Uncommon"
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case RarityLegendary:
		return "Legendary"
	case RarityMythic:
		return "Mythic"
	default:
		return fmt.Sprintf("Rarity(%d)", int(r))
	}
}

// Valid reports whether r is a known rarity.
func (r Rarity) Valid() bool {
	return r >= RarityCommon && r <= RarityMythic
}

// ParseRarity accepts either a rarity name or its numeric code.
func ParseRarity(s string) (Rarity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r := RarityCommon; r <= RarityMythic; r++ {
		if s == strings.ToLower(r.String()) || s == fmt.Sprint(int(r)) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: rarity %q", ErrUnknownValue, s)
}

// Item is one piece of equipment or one skill as the inventory reports it.
type Item struct {
	ID     string   `json:"id"`
	Name   string   `json:"name,omitempty"`
	Kind   ItemKind `json:"-"`
	Rarity Rarity   `json:"-"`
	Level  int      `json:"level"`
}

// LevelUpEvent asks for one level on one item. EventID is the idempotency key.
type LevelUpEvent struct {
	EventID string
	ItemID  string
}

// GroupNotification carries every current level for one rarity and kind group.
type GroupNotification struct {
	Kind   ItemKind
	Rarity Rarity
	Levels []int
}

// Category returns the channel the notification belongs to.
func (n GroupNotification) Category() Category {
	return n.Kind.Category()
}
