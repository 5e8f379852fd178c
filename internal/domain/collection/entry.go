package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/codex/internal/domain/eventbus"
	"github.com/okian/codex/internal/domain/model"
	"github.com/okian/codex/internal/domain/tier"
	"github.com/okian/codex/pkg/logger"
	"github.com/okian/codex/pkg/metrics"
)

// State is the ladder position of an entry.
type State int

// Entry states. Eligibility is an overlay on Locked and Progressing only.
const (
	StateLocked State = iota
	StateProgressing
	StateMaxed
)

func (s State) String() string {
	switch s {
	case StateLocked:
		return "locked"
	case StateProgressing:
		return "progressing"
	case StateMaxed:
		return "maxed"
	default:
		return "unknown"
	}
}

// entryDeps are the collaborators an entry is built with.
type entryDeps struct {
	bus      *eventbus.Bus
	levels   LevelSource
	store    ProgressStore
	observer observer
	logger   logger.Logger
}

// Entry is one collection ladder plus its mutable progress.
//
// Invariant: 0 <= tier <= ceiling, and eligible implies tier < ceiling and
// that the entry is detached from the bus.
type Entry struct {
	table    *tier.Table
	tier     int
	eligible bool

	// channel is only meaningful while attached.
	channel  model.Category
	attached bool

	bus      *eventbus.Bus
	levels   LevelSource
	store    ProgressStore
	observer observer
	logger   logger.Logger
}

func newEntry(table *tier.Table, deps entryDeps) *Entry {
	if deps.logger == nil {
		deps.logger = logger.Nop()
	}
	if deps.bus == nil {
		deps.bus = eventbus.New()
	}
	return &Entry{
		table:    table,
		bus:      deps.bus,
		levels:   deps.levels,
		store:    deps.store,
		observer: deps.observer,
		logger:   deps.logger,
	}
}

// ID returns the entry identifier.
func (e *Entry) ID() int { return e.table.EntryID() }

// Tier returns the current tier.
func (e *Entry) Tier() int { return e.tier }

// Ceiling returns the highest tier of the ladder.
func (e *Entry) Ceiling() int { return e.table.Ceiling() }

// Eligible reports whether the next tier's condition was last seen satisfied.
func (e *Entry) Eligible() bool { return e.eligible }

// Maxed reports whether the entry sits on its ceiling.
func (e *Entry) Maxed() bool { return e.tier >= e.table.Ceiling() }

// State returns the ladder position.
func (e *Entry) State() State {
	switch {
	case e.Maxed():
		return StateMaxed
	case e.tier == 0:
		return StateLocked
	default:
		return StateProgressing
	}
}

// Current returns the record of the current tier.
func (e *Entry) Current() model.TierRecord {
	return e.recordAt(e.tier)
}

// Next returns the record of the next tier, or the current one when maxed.
func (e *Entry) Next() model.TierRecord {
	return e.recordAt(min(e.tier+1, e.table.Ceiling()))
}

// Category is the category of the current tier, used for listing tabs.
func (e *Entry) Category() model.Category {
	return e.Current().Category
}

// Subscribed reports whether the entry is attached to the bus.
func (e *Entry) Subscribed() bool {
	return e.attached && e.bus.Subscribed(e.channel, e.ID())
}

// Records returns the whole ladder.
func (e *Entry) Records() []model.TierRecord {
	return e.table.Records()
}

func (e *Entry) recordAt(i int) model.TierRecord {
	rec, err := e.table.RecordAt(i)
	if err != nil {
		// tier is kept inside the ladder by every mutation.
		panic(err)
	}
	return rec
}

// Initialize attaches the entry to the channel of its next tier and computes
// eligibility from a fresh level snapshot. A maxed entry is detached instead.
func (e *Entry) Initialize(ctx context.Context) error {
	if e.Maxed() {
		e.detach()
		e.setEligible(ctx, false)
		return nil
	}
	e.attach()
	return e.Refresh(ctx)
}

// Refresh queries the current levels for the next tier and re-evaluates.
func (e *Entry) Refresh(ctx context.Context) error {
	if e.Maxed() {
		e.Reevaluate(ctx, nil)
		return nil
	}
	levels, err := e.snapshot(ctx, e.Next())
	if err != nil {
		return err
	}
	e.Reevaluate(ctx, levels)
	return nil
}

func (e *Entry) snapshot(ctx context.Context, next model.TierRecord) ([]int, error) {
	if e.levels == nil {
		return nil, nil
	}
	var levels []int
	for _, kind := range next.Kind.Members() {
		ls, err := e.levels.Levels(ctx, kind, next.Rarity)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d %s/%s: %w", ErrLevelQuery, e.ID(), kind, next.Rarity, err)
		}
		levels = append(levels, ls...)
	}
	return levels, nil
}

// HandleGroup is the bus handler. Notifications for another rarity or an
// unrelated kind are ignored, as is an empty group (no relevant items yet).
func (e *Entry) HandleGroup(ctx context.Context, n model.GroupNotification) {
	next := e.Next()
	if n.Rarity != next.Rarity || !next.Kind.Accepts(n.Kind) {
		return
	}
	if len(n.Levels) == 0 {
		return
	}
	e.Reevaluate(ctx, n.Levels)
}

// Reevaluate sets eligibility from levels and returns it. Every level must
// meet the next tier's condition; an empty list never does. Becoming
// eligible detaches the entry from the bus until the next Initialize,
// Advance or Load.
func (e *Entry) Reevaluate(ctx context.Context, levels []int) bool {
	if e.Maxed() {
		e.detach()
		e.setEligible(ctx, false)
		return false
	}

	cond := e.Next().LevelCondition
	ok := len(levels) > 0
	for _, l := range levels {
		if l < cond {
			ok = false
			break
		}
	}

	if ok {
		e.detach()
	}
	e.setEligible(ctx, ok)
	return ok
}

// Advance moves the entry up one tier and returns the previous and the new
// tier records. Preconditions are checked before anything changes. A persist
// or refresh failure is returned after the in-memory transition completed,
// so memory may be ahead of the durable store.
func (e *Entry) Advance(ctx context.Context) (model.TierRecord, model.TierRecord, error) {
	if e.Maxed() {
		return model.TierRecord{}, model.TierRecord{}, fmt.Errorf("%w: entry %d at tier %d", ErrAlreadyMaxed, e.ID(), e.tier)
	}
	if !e.eligible {
		return model.TierRecord{}, model.TierRecord{}, fmt.Errorf("%w: entry %d at tier %d", ErrNotEligible, e.ID(), e.tier)
	}

	prev := e.Current()
	e.tier++
	cur := e.Current()

	e.setEligible(ctx, false)
	if e.observer != nil {
		e.observer.tierAdvanced(ctx, e, prev.Tier, cur.Tier)
	}
	e.logger.Info(ctx, "collection advanced",
		logger.Int("entry", e.ID()),
		logger.Int("from", prev.Tier),
		logger.Int("to", cur.Tier),
	)

	saveErr := e.Save(ctx)

	var refreshErr error
	if e.Maxed() {
		e.detach()
	} else {
		e.attach()
		refreshErr = e.Refresh(ctx)
	}
	return prev, cur, errors.Join(saveErr, refreshErr)
}

// Key is the persistence key of the entry's tier.
func (e *Entry) Key() string {
	return fmt.Sprintf("collection_%d_level", e.ID())
}

// Save persists the current tier.
func (e *Entry) Save(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Save(ctx, e.Key(), e.tier); err != nil {
		return fmt.Errorf("%w: save %s: %w", ErrPersist, e.Key(), err)
	}
	return nil
}

// Load restores the tier (default 0) and then re-initializes, so eligibility
// is always recomputed from live levels and never carried over.
func (e *Entry) Load(ctx context.Context) error {
	if e.store != nil {
		v, err := e.store.Load(ctx, e.Key(), 0)
		if err != nil {
			return fmt.Errorf("%w: load %s: %w", ErrPersist, e.Key(), err)
		}
		if v < 0 || v > e.table.Ceiling() {
			e.logger.Warn(ctx, "stored tier outside ladder; clamping",
				logger.Int("entry", e.ID()),
				logger.Int("stored", v),
				logger.Int("ceiling", e.table.Ceiling()),
			)
			v = max(0, min(v, e.table.Ceiling()))
		}
		e.tier = v
	}
	return e.Initialize(ctx)
}

func (e *Entry) attach() {
	ch := e.Next().Category
	if e.attached && e.channel != ch {
		e.bus.Unsubscribe(e.channel, e.ID())
	}
	e.bus.Subscribe(ch, e.ID(), e.HandleGroup)
	e.channel = ch
	e.attached = true
}

func (e *Entry) detach() {
	if !e.attached {
		return
	}
	e.bus.Unsubscribe(e.channel, e.ID())
	e.attached = false
}

func (e *Entry) setEligible(ctx context.Context, v bool) {
	if e.eligible == v {
		return
	}
	e.eligible = v
	metrics.RecordEligibilityChange(v)
	e.logger.Debug(ctx, "eligibility changed",
		logger.Int("entry", e.ID()),
		logger.Int("tier", e.tier),
		logger.Bool("eligible", v),
	)
	if e.observer != nil {
		e.observer.eligibilityChanged(ctx, e)
	}
}
