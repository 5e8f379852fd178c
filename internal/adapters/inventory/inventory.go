// Package inventory holds the player's equipment and skills and answers the
// level queries collection entries evaluate against.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/okian/codex/internal/domain/model"
	"github.com/okian/codex/pkg/logger"
	"github.com/okian/codex/pkg/metrics"
)

const defaultMaxLevel = 50

// Inventory is an in-memory item store safe for concurrent use.
type Inventory struct {
	mu       sync.RWMutex
	items    map[string]*model.Item
	maxLevel int
	hooks    []LevelUpHook
	logger   logger.Logger
}

// New returns an empty inventory.
func New(opts ...Option) *Inventory {
	inv := &Inventory{
		items:    make(map[string]*model.Item),
		maxLevel: defaultMaxLevel,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// OnLevelUp registers a hook after construction.
func (inv *Inventory) OnLevelUp(fn LevelUpHook) {
	if fn == nil {
		return
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.hooks = append(inv.hooks, fn)
}

// MaxLevel returns the level cap.
func (inv *Inventory) MaxLevel() int { return inv.maxLevel }

// Add stores a new item and returns it with a fresh id. An empty id in item
// is replaced; a non-empty one is kept so seeded data stays stable.
func (inv *Inventory) Add(_ context.Context, item model.Item) (model.Item, error) {
	if !item.Kind.Valid() || !item.Rarity.Valid() {
		return model.Item{}, fmt.Errorf("%w: kind %s rarity %s", ErrInvalidItem, item.Kind, item.Rarity)
	}
	if item.Level < 1 || item.Level > inv.maxLevel {
		return model.Item{}, fmt.Errorf("%w: level %d outside 1..%d", ErrInvalidItem, item.Level, inv.maxLevel)
	}
	if strings.TrimSpace(item.ID) == "" {
		item.ID = uuid.NewString()
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if _, ok := inv.items[item.ID]; ok {
		return model.Item{}, fmt.Errorf("%w: duplicate id %s", ErrInvalidItem, item.ID)
	}
	stored := item
	inv.items[item.ID] = &stored
	return item, nil
}

// Get returns the item with the given id.
func (inv *Inventory) Get(_ context.Context, id string) (model.Item, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	it, ok := inv.items[id]
	if !ok {
		return model.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return *it, nil
}

// LevelUp raises an item by one level and runs the level-up hooks. Hook
// errors are returned joined; the level change itself stands.
func (inv *Inventory) LevelUp(ctx context.Context, id string) (model.Item, error) {
	inv.mu.Lock()
	it, ok := inv.items[id]
	if !ok {
		inv.mu.Unlock()
		metrics.RecordLevelUpError("not_found")
		return model.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if it.Level >= inv.maxLevel {
		inv.mu.Unlock()
		metrics.RecordLevelUpError("max_level")
		return model.Item{}, fmt.Errorf("%w: %s at %d", ErrMaxLevel, id, it.Level)
	}
	it.Level++
	item := *it
	hooks := append([]LevelUpHook(nil), inv.hooks...)
	inv.mu.Unlock()

	metrics.RecordLevelUp()
	inv.logger.Debug(ctx, "item leveled up",
		logger.String("item", item.ID),
		logger.String("kind", item.Kind.String()),
		logger.String("rarity", item.Rarity.String()),
		logger.Int("level", item.Level),
	)

	var errs []error
	for _, h := range hooks {
		if err := h(ctx, item); err != nil {
			errs = append(errs, err)
		}
	}
	return item, errors.Join(errs...)
}

// Levels returns the level of every item of kind and rarity. The result is
// empty when no such item exists.
func (inv *Inventory) Levels(_ context.Context, kind model.ItemKind, rarity model.Rarity) ([]int, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	var out []int
	for _, it := range inv.items {
		if it.Kind == kind && it.Rarity == rarity {
			out = append(out, it.Level)
		}
	}
	sort.Ints(out)
	return out, nil
}

// Items returns every item ordered by kind, rarity, name and id.
func (inv *Inventory) Items(_ context.Context) []model.Item {
	inv.mu.RLock()
	out := make([]model.Item, 0, len(inv.items))
	for _, it := range inv.items {
		out = append(out, *it)
	}
	inv.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Rarity != b.Rarity {
			return a.Rarity < b.Rarity
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out
}

// Len returns the number of items.
func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.items)
}
