package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/okian/codex/internal/domain/eventbus"
	"github.com/okian/codex/internal/domain/model"
	"github.com/okian/codex/internal/domain/tier"
	"github.com/okian/codex/pkg/logger"
	"github.com/okian/codex/pkg/metrics"
)

// Registry owns every collection entry, routes item level-ups onto the bus
// and turns advances into ledger updates. It never touches entry internals
// except through entry methods.
type Registry struct {
	entries map[int]*Entry
	ids     []int

	bus       *eventbus.Bus
	levels    LevelSource
	store     ProgressStore
	ledger    Ledger
	listeners []Listener
	logger    logger.Logger

	// applied is what this registry has pushed to the ledger per entry.
	applied map[int]model.StatChange
}

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithBus sets the event bus entries attach to.
func WithBus(bus *eventbus.Bus) Option {
	return func(r *Registry) {
		if bus != nil {
			r.bus = bus
		}
	}
}

// WithLevelSource sets the inventory level query.
func WithLevelSource(src LevelSource) Option {
	return func(r *Registry) {
		r.levels = src
	}
}

// WithProgressStore sets the durable tier store.
func WithProgressStore(store ProgressStore) Option {
	return func(r *Registry) {
		r.store = store
	}
}

// WithLedger sets the status ledger advances are pushed to.
func WithLedger(ledger Ledger) Option {
	return func(r *Registry) {
		r.ledger = ledger
	}
}

// WithListener adds a notification listener.
func WithListener(l Listener) Option {
	return func(r *Registry) {
		if l != nil {
			r.listeners = append(r.listeners, l)
		}
	}
}

// WithLogger sets a custom logger for the registry and its entries.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry groups records by entry id and builds one ladder and one entry
// per id. Entries start at tier 0, detached; call LoadAll to restore them.
func NewRegistry(records []model.TierRecord, opts ...Option) (*Registry, error) {
	r := &Registry{
		entries: make(map[int]*Entry),
		bus:     eventbus.New(),
		logger:  logger.Nop(),
		applied: make(map[int]model.StatChange),
	}
	for _, opt := range opts {
		opt(r)
	}

	grouped := make(map[int][]model.TierRecord)
	for _, rec := range records {
		grouped[rec.EntryID] = append(grouped[rec.EntryID], rec)
	}

	for id, recs := range grouped {
		table, err := tier.Build(id, recs)
		if err != nil {
			return nil, err
		}
		r.entries[id] = newEntry(table, entryDeps{
			bus:      r.bus,
			levels:   r.levels,
			store:    r.store,
			observer: r,
			logger:   r.logger,
		})
		r.ids = append(r.ids, id)
	}
	sort.Ints(r.ids)

	metrics.UpdateCollectionEntries(len(r.ids))
	return r, nil
}

// Bus returns the bus entries attach to.
func (r *Registry) Bus() *eventbus.Bus { return r.bus }

// AddListener registers l for entry notifications.
func (r *Registry) AddListener(l Listener) {
	if l != nil {
		r.listeners = append(r.listeners, l)
	}
}

// EntryIDs returns every entry id in ascending order.
func (r *Registry) EntryIDs() []int {
	out := make([]int, len(r.ids))
	copy(out, r.ids)
	return out
}

// Entry returns the entry with the given id.
func (r *Registry) Entry(id int) (*Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntry, id)
	}
	return e, nil
}

// LoadAll restores every entry's tier, re-initializes it against fresh
// levels, and brings the ledger in line with the restored tiers. It can be
// called again; stats already pushed are not pushed twice.
func (r *Registry) LoadAll(ctx context.Context) error {
	var errs []error
	for _, id := range r.ids {
		if err := r.entries[id].Load(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.reconcile(ctx); err != nil {
		errs = append(errs, err)
	}
	metrics.UpdateEligibleEntries(r.EligibleCount())
	r.logger.Info(ctx, "collections loaded",
		logger.Int("entries", len(r.ids)),
		logger.Int("eligible", r.EligibleCount()),
	)
	return errors.Join(errs...)
}

// reconcile pushes the difference between what each entry should contribute
// and what has been pushed so far.
func (r *Registry) reconcile(ctx context.Context) error {
	var errs []error
	for _, id := range r.ids {
		e := r.entries[id]
		var want model.StatChange
		if e.Tier() > 0 {
			want = e.Current().Contribution()
		}
		have := r.applied[id]
		if want == have {
			continue
		}
		if !have.IsZero() {
			if err := r.push(ctx, have.Negate()); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		if !want.IsZero() {
			if err := r.push(ctx, want); err != nil {
				errs = append(errs, err)
				delete(r.applied, id)
				continue
			}
		}
		r.applied[id] = want
	}
	return errors.Join(errs...)
}

// Advance moves entry id up one tier and returns the stat delta. Retract is
// nil when the entry was on tier 0. The delta is pushed to the ledger when
// one is configured. Precondition failures return before anything changes;
// a persist failure still returns the delta alongside the error.
func (r *Registry) Advance(ctx context.Context, id int) (model.StatDelta, error) {
	e, err := r.Entry(id)
	if err != nil {
		metrics.RecordAdvanceRejected("unknown_entry")
		return model.StatDelta{}, err
	}

	var retract *model.StatChange
	if e.Tier() > 0 {
		c := e.Current().Contribution().Negate()
		retract = &c
	}

	_, cur, err := e.Advance(ctx)
	switch {
	case errors.Is(err, ErrAlreadyMaxed):
		metrics.RecordAdvanceRejected("already_maxed")
		return model.StatDelta{}, err
	case errors.Is(err, ErrNotEligible):
		metrics.RecordAdvanceRejected("not_eligible")
		return model.StatDelta{}, err
	case err != nil:
		metrics.RecordErrorByComponent("collection", "advance_side_effect")
		r.logger.Error(ctx, "advance completed with errors", logger.Int("entry", id), logger.Error(err))
	}

	delta := model.StatDelta{Retract: retract, Apply: cur.Contribution()}
	metrics.RecordAdvance()

	// applied mirrors what the ledger holds after each successful push.
	var pushErr error
	if retract != nil {
		pushErr = r.push(ctx, *retract)
		if pushErr == nil {
			r.applied[id] = model.StatChange{}
		}
	}
	if pushErr == nil {
		pushErr = r.push(ctx, delta.Apply)
	}
	if pushErr == nil {
		r.applied[id] = delta.Apply
	}
	return delta, errors.Join(err, pushErr)
}

func (r *Registry) push(ctx context.Context, c model.StatChange) error {
	if r.ledger == nil {
		return nil
	}
	if err := r.ledger.Push(ctx, c); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLedger, c.Stat, err)
	}
	return nil
}

// AnyEligible reports whether any entry may advance.
func (r *Registry) AnyEligible() bool {
	for _, id := range r.ids {
		if r.entries[id].Eligible() {
			return true
		}
	}
	return false
}

// EligibleCount returns how many entries may advance.
func (r *Registry) EligibleCount() int {
	n := 0
	for _, id := range r.ids {
		if r.entries[id].Eligible() {
			n++
		}
	}
	return n
}

// OnItemLevelUp re-queries every level in the group of kind at rarity and
// publishes a single group notification. It returns how many entries the
// notification reached.
func (r *Registry) OnItemLevelUp(ctx context.Context, kind model.ItemKind, rarity model.Rarity) (int, error) {
	group := kind.Group()
	var levels []int
	if r.levels != nil {
		for _, k := range group.Members() {
			ls, err := r.levels.Levels(ctx, k, rarity)
			if err != nil {
				return 0, fmt.Errorf("%w: %s/%s: %w", ErrLevelQuery, k, rarity, err)
			}
			levels = append(levels, ls...)
		}
	}
	n := r.bus.Publish(ctx, model.GroupNotification{Kind: group, Rarity: rarity, Levels: levels})
	r.logger.Debug(ctx, "group notification published",
		logger.String("kind", group.String()),
		logger.String("rarity", rarity.String()),
		logger.Int("levels", len(levels)),
		logger.Int("delivered", n),
	)
	return n, nil
}

// Ordered lists entry ids with eligible entries first, then by id. When
// category is non-nil only entries whose current tier is in it are listed.
func (r *Registry) Ordered(category *model.Category) []int {
	out := make([]int, 0, len(r.ids))
	for _, id := range r.ids {
		if category != nil && r.entries[id].Category() != *category {
			continue
		}
		out = append(out, id)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := r.entries[out[i]].Eligible(), r.entries[out[j]].Eligible()
		if ei != ej {
			return ei
		}
		return out[i] < out[j]
	})
	return out
}

func (r *Registry) eligibilityChanged(ctx context.Context, e *Entry) {
	metrics.UpdateEligibleEntries(r.EligibleCount())
	for _, l := range r.listeners {
		l.EligibilityChanged(ctx, e.ID(), e.Eligible())
	}
}

func (r *Registry) tierAdvanced(ctx context.Context, e *Entry, from, to int) {
	for _, l := range r.listeners {
		l.TierAdvanced(ctx, e.ID(), from, to)
	}
}
