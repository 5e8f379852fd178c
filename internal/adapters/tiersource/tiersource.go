// Package tiersource loads collection tier rows and the starting inventory
// from a YAML data file.
package tiersource

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/codex/internal/domain/model"
)

// Sentinel kinds for data file errors.
var (
	ErrLoad    = errors.New("load data file")
	ErrInvalid = errors.New("invalid data row")
)

// Row is one tier as written in the data file.
type Row struct {
	Index           int    `koanf:"index" validate:"gte=0"`
	CollectionLevel int    `koanf:"collection_level" validate:"gte=0"`
	Group           string `koanf:"group" validate:"required,oneof=Equipment Skill"`
	Type            string `koanf:"type" validate:"required,oneof=Weapon Armor Active Passive"`
	Rarity          string `koanf:"rarity_condition" validate:"required"`
	LevelCondition  int    `koanf:"level_condition" validate:"gte=0"`
	StatusType      string `koanf:"status_type" validate:"required"`
	StatusValue     int    `koanf:"status_value" validate:"gte=0"`
}

// ItemRow is one starting inventory item.
type ItemRow struct {
	ID     string `koanf:"id"`
	Name   string `koanf:"name" validate:"required"`
	Type   string `koanf:"type" validate:"required,oneof=Weapon Armor Active Buff Passive"`
	Rarity string `koanf:"rarity" validate:"required"`
	Level  int    `koanf:"level" validate:"gte=1"`
}

// Document is the whole data file.
type Document struct {
	Collections []Row     `koanf:"collections" validate:"dive"`
	Inventory   []ItemRow `koanf:"inventory" validate:"dive"`
}

// Data is the converted content of a data file.
type Data struct {
	Records []model.TierRecord
	Items   []model.Item
}

// LoadFile reads, validates and converts the data file at path.
func LoadFile(path string) (Data, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Data{}, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	var doc Document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Data{}, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	return Convert(doc)
}

// Convert validates a document and turns it into domain values.
func Convert(doc Document) (Data, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(doc); err != nil {
		return Data{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	out := Data{
		Records: make([]model.TierRecord, 0, len(doc.Collections)),
		Items:   make([]model.Item, 0, len(doc.Inventory)),
	}
	for i, r := range doc.Collections {
		rec, err := r.record()
		if err != nil {
			return Data{}, fmt.Errorf("%w: collections[%d]: %w", ErrInvalid, i, err)
		}
		out.Records = append(out.Records, rec)
	}
	for i, r := range doc.Inventory {
		it, err := r.item()
		if err != nil {
			return Data{}, fmt.Errorf("%w: inventory[%d]: %w", ErrInvalid, i, err)
		}
		out.Items = append(out.Items, it)
	}
	return out, nil
}

func (r Row) record() (model.TierRecord, error) {
	kind, err := model.ParseItemKind(r.Type)
	if err != nil {
		return model.TierRecord{}, err
	}
	group, err := model.ParseCategory(r.Group)
	if err != nil {
		return model.TierRecord{}, err
	}
	if kind.Category() != group {
		return model.TierRecord{}, fmt.Errorf("type %s is not in group %s", r.Type, r.Group)
	}
	rarity, err := model.ParseRarity(r.Rarity)
	if err != nil {
		return model.TierRecord{}, err
	}
	stat, err := model.ParseStatType(r.StatusType)
	if err != nil {
		return model.TierRecord{}, err
	}
	return model.NewTierRecord(r.Index, r.CollectionLevel, kind, rarity, r.LevelCondition, stat, r.StatusValue), nil
}

func (r ItemRow) item() (model.Item, error) {
	kind, err := model.ParseItemKind(r.Type)
	if err != nil {
		return model.Item{}, err
	}
	rarity, err := model.ParseRarity(r.Rarity)
	if err != nil {
		return model.Item{}, err
	}
	return model.Item{ID: r.ID, Name: r.Name, Kind: kind, Rarity: rarity, Level: r.Level}, nil
}
