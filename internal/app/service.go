// Package service wires the collection engine to its adapters and implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/codex/internal/adapters/inventory"
	"github.com/okian/codex/internal/adapters/ledger"
	eventqueue "github.com/okian/codex/internal/adapters/mq/queue"
	workerpool "github.com/okian/codex/internal/adapters/mq/worker"
	"github.com/okian/codex/internal/adapters/repository"
	"github.com/okian/codex/internal/adapters/tiersource"
	"github.com/okian/codex/internal/domain/collection"
	"github.com/okian/codex/internal/domain/dedupe"
	"github.com/okian/codex/internal/domain/model"
	"github.com/okian/codex/internal/domain/types"
	"github.com/okian/codex/pkg/logger"
	"github.com/okian/codex/pkg/metrics"
)

// Service hosts one player's collections. The engine is single-threaded:
// every call into the registry, and every inventory level-up, runs under
// engine so the HTTP front and the workers never interleave inside it.
type Service struct {
	mu     sync.RWMutex
	engine sync.Mutex

	// Core components
	store     repository.Store
	inventory *inventory.Inventory
	ledger    *ledger.Ledger
	registry  *collection.Registry
	deduper   dedupe.Deduper
	queue     *eventqueue.InMemoryQueue
	pool      *workerpool.Pool
	notifier  *notifier

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	feedBuffer   int
	maxItemLevel int
	dataPath     string
	storePath    string
	data         *tiersource.Data

	// State
	started   bool
	ownsStore bool
	cancel    context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    1_024,
		dedupeSize:   10_000,
		feedBuffer:   32,
		maxItemLevel: 50,
		dataPath:     "data/collections.yaml",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the tier data, restores progress and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting collection service...")

	data, err := s.loadData()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStart, err)
	}

	if s.store == nil {
		store, err := s.openStore(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStart, err)
		}
		s.store = store
		s.ownsStore = true
	}

	s.inventory = inventory.New(
		inventory.WithMaxLevel(s.maxItemLevel),
		inventory.WithLogger(s.logger.Named("inventory")),
	)
	for _, it := range data.Items {
		if _, err := s.inventory.Add(ctx, it); err != nil {
			return fmt.Errorf("%w: seed item %q: %w", ErrStart, it.Name, err)
		}
	}

	s.ledger = ledger.New(ledger.WithLogger(s.logger.Named("ledger")))
	s.notifier = newNotifier(s.feedBuffer, s.anyEligible)

	s.registry, err = collection.NewRegistry(data.Records,
		collection.WithLevelSource(s.inventory),
		collection.WithProgressStore(s.store),
		collection.WithLedger(s.ledger),
		collection.WithListener(s.notifier),
		collection.WithLogger(s.logger.Named("collection")),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStart, err)
	}

	// Level-ups reach the registry from inside Process, which already holds
	// the engine lock.
	s.inventory.OnLevelUp(func(ctx context.Context, it model.Item) error {
		_, err := s.registry.OnItemLevelUp(ctx, it.Kind, it.Rarity)
		return err
	})

	s.engine.Lock()
	err = s.registry.LoadAll(ctx)
	s.engine.Unlock()
	if err != nil {
		// Entries that loaded stay usable.
		s.logger.Error(ctx, "collections restored with errors", logger.Error(err))
		metrics.RecordErrorByComponent("service", "load")
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s,
		workerpool.WithLogger(s.logger),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "collection service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("entries", len(s.registry.EntryIDs())),
		logger.Int("items", s.inventory.Len()),
	)
	return nil
}

func (s *Service) loadData() (tiersource.Data, error) {
	if s.data != nil {
		return *s.data, nil
	}
	return tiersource.LoadFile(s.dataPath)
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	if s.storePath == "" {
		s.logger.Info(ctx, "using in-memory progress store")
		return repository.NewMemoryStore(), nil
	}
	s.logger.Info(ctx, "using sqlite progress store", logger.String("path", s.storePath))
	return repository.OpenSQLite(ctx, s.storePath, repository.WithLogger(s.logger.Named("repository")))
}

// Stop drains the workers, closes the store it opened and ends every feed
// subscription.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping collection service...")
	begin := time.Now()

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	s.cancel()
	// A store opened by Start is reopened by the next Start.
	if s.ownsStore {
		if err := s.store.Close(); err != nil {
			errs = append(errs, err)
		}
		s.store = nil
		s.ownsStore = false
	}
	s.notifier.closeAll()

	s.started = false
	s.logger.Info(ctx, "collection service stopped", logger.Duration("took", time.Since(begin)))
	return errors.Join(errs...)
}

func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) anyEligible() bool {
	if s.registry == nil {
		return false
	}
	return s.registry.AnyEligible()
}

// Process applies one level-up event. It is called by the workers.
func (s *Service) Process(ctx context.Context, e workerpool.Event) error {
	s.engine.Lock()
	defer s.engine.Unlock()

	it, err := s.inventory.LevelUp(ctx, e.ItemID)
	if err != nil {
		return fmt.Errorf("level up %s (event %s): %w", e.ItemID, e.EventID, err)
	}
	s.logger.Debug(ctx, "item levelled up",
		logger.String("event", e.EventID),
		logger.String("item", it.ID),
		logger.Int("level", it.Level),
	)
	return nil
}

// SubmitLevelUp queues one level for itemID. An empty eventID gets a fresh
// one. A repeated eventID is acknowledged as a duplicate and queues nothing.
func (s *Service) SubmitLevelUp(ctx context.Context, eventID, itemID string) (types.Ack, error) {
	if err := s.running(); err != nil {
		return types.Ack{}, err
	}
	if _, err := s.inventory.Get(ctx, itemID); err != nil {
		return types.Ack{}, err
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}
	if s.deduper.SeenAndRecord(ctx, eventID) {
		metrics.RecordLevelUpDuplicate()
		return types.Ack{Status: "duplicate", EventID: eventID, Duplicate: true}, nil
	}
	if err := s.queue.Enqueue(ctx, model.LevelUpEvent{EventID: eventID, ItemID: itemID}); err != nil {
		s.deduper.Unrecord(ctx, eventID)
		return types.Ack{}, err
	}
	return types.Ack{Status: "accepted", EventID: eventID}, nil
}

// Collections lists entry previews, eligible first. A nil category lists
// every entry.
func (s *Service) Collections(ctx context.Context, category *model.Category) ([]collection.Preview, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	s.engine.Lock()
	defer s.engine.Unlock()

	ids := s.registry.Ordered(category)
	out := make([]collection.Preview, 0, len(ids))
	for _, id := range ids {
		p, err := s.registry.Preview(id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Collection returns the preview of entry id.
func (s *Service) Collection(ctx context.Context, id int) (collection.Preview, error) {
	if err := s.running(); err != nil {
		return collection.Preview{}, err
	}
	s.engine.Lock()
	defer s.engine.Unlock()
	return s.registry.Preview(id)
}

// Advance moves entry id up one tier. The delta is returned even when
// persisting it failed.
func (s *Service) Advance(ctx context.Context, id int) (model.StatDelta, error) {
	if err := s.running(); err != nil {
		return model.StatDelta{}, err
	}
	s.engine.Lock()
	defer s.engine.Unlock()
	return s.registry.Advance(ctx, id)
}

// Badge reports whether any entry may advance, and how many.
func (s *Service) Badge(ctx context.Context) (types.Badge, error) {
	if err := s.running(); err != nil {
		return types.Badge{}, err
	}
	s.engine.Lock()
	defer s.engine.Unlock()
	return types.Badge{On: s.registry.AnyEligible(), Eligible: s.registry.EligibleCount()}, nil
}

// Status returns the ledger totals.
func (s *Service) Status(ctx context.Context) (ledger.Snapshot, error) {
	if err := s.running(); err != nil {
		return ledger.Snapshot{}, err
	}
	return s.ledger.Snapshot(), nil
}

// Inventory returns every item.
func (s *Service) Inventory(ctx context.Context) ([]types.Item, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	items := s.inventory.Items(ctx)
	out := make([]types.Item, len(items))
	for i, it := range items {
		out[i] = types.Item{
			ID:     it.ID,
			Name:   it.Name,
			Kind:   it.Kind.String(),
			Rarity: it.Rarity.String(),
			Level:  it.Level,
		}
	}
	return out, nil
}

// Subscribe returns a notification stream and its cancel function. The
// stream is closed by cancel or by Stop.
func (s *Service) Subscribe(ctx context.Context) (<-chan types.Notification, func(), error) {
	if err := s.running(); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.notifier.subscribe()
	return ch, cancel, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if !s.started {
		return stats
	}

	queueLen := s.queue.Len(ctx)
	stats["queueLength"] = queueLen
	stats["busyWorkers"] = s.pool.Busy()
	stats["seenEvents"] = s.deduper.Size()
	stats["items"] = s.inventory.Len()

	s.engine.Lock()
	stats["entries"] = len(s.registry.EntryIDs())
	stats["eligible"] = s.registry.EligibleCount()
	s.engine.Unlock()

	if n, err := s.store.Count(ctx); err == nil {
		stats["storedKeys"] = n
		metrics.UpdateRepositoryRecordsTotal(n)
	}
	metrics.UpdateQueueSize(queueLen)
	return stats
}
