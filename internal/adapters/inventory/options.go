package inventory

import (
	"context"

	"github.com/okian/codex/internal/domain/model"
	"github.com/okian/codex/pkg/logger"
)

// LevelUpHook runs after an item gained a level, outside the inventory lock.
type LevelUpHook func(ctx context.Context, item model.Item) error

// Option applies a configuration option to the Inventory.
type Option func(*Inventory)

// WithMaxLevel caps item levels.
func WithMaxLevel(level int) Option {
	return func(inv *Inventory) {
		if level > 0 {
			inv.maxLevel = level
		}
	}
}

// WithLevelUpHook registers fn to run after every level-up.
func WithLevelUpHook(fn LevelUpHook) Option {
	return func(inv *Inventory) {
		if fn != nil {
			inv.hooks = append(inv.hooks, fn)
		}
	}
}

// WithLogger sets a custom logger for the inventory.
func WithLogger(l logger.Logger) Option {
	return func(inv *Inventory) {
		if l != nil {
			inv.logger = l
		}
	}
}
