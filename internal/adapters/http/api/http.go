// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/okian/codex/internal/adapters/inventory"
	"github.com/okian/codex/internal/adapters/ledger"
	"github.com/okian/codex/internal/adapters/mq/queue"
	"github.com/okian/codex/internal/domain/collection"
	"github.com/okian/codex/internal/domain/model"
	"github.com/okian/codex/internal/domain/types"
	"github.com/okian/codex/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CollectionDependencies
	StatusDependencies
	InventoryDependencies
	FeedDependencies
}

// CollectionDependencies reads and advances collection entries.
type CollectionDependencies interface {
	Collections(ctx context.Context, category *model.Category) ([]collection.Preview, error)
	Collection(ctx context.Context, id int) (collection.Preview, error)
	Advance(ctx context.Context, id int) (model.StatDelta, error)
}

// StatusDependencies exposes the badge and the stat totals.
type StatusDependencies interface {
	Badge(ctx context.Context) (types.Badge, error)
	Status(ctx context.Context) (ledger.Snapshot, error)
}

// InventoryDependencies lists items and queues level-ups.
type InventoryDependencies interface {
	Inventory(ctx context.Context) ([]types.Item, error)
	// SubmitLevelUp queues a level-up. It fails with the queue's ErrFull on
	// backpressure.
	SubmitLevelUp(ctx context.Context, eventID, itemID string) (types.Ack, error)
}

// FeedDependencies streams entry notifications.
type FeedDependencies interface {
	Subscribe(ctx context.Context) (<-chan types.Notification, func(), error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	collectionHandler *CollectionHandler
	statusHandler     *StatusHandler
	inventoryHandler  *InventoryHandler
	feedHandler       *FeedHandler
}

// Option applies a configuration option to the Server.
type Option func(*options)

type options struct {
	logger     logger.Logger
	feedOrigin func(r *http.Request) bool
}

// WithLogger sets the logger handlers report failures to.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFeedOrigin sets the websocket origin check of /feed.
func WithFeedOrigin(check func(r *http.Request) bool) Option {
	return func(o *options) {
		o.feedOrigin = check
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := options{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		collectionHandler: NewCollectionHandler(deps),
		statusHandler:     NewStatusHandler(deps),
		inventoryHandler:  NewInventoryHandler(deps),
		feedHandler:       NewFeedHandler(deps, o.logger, o.feedOrigin),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /collections", MetricsMiddleware(s.collectionHandler.HandleList, "collections"))
	mux.HandleFunc("GET /collections/{id}", MetricsMiddleware(s.collectionHandler.HandleGet, "collection"))
	mux.HandleFunc("POST /collections/{id}/advance", MetricsMiddleware(s.collectionHandler.HandleAdvance, "advance"))
	mux.HandleFunc("GET /badge", MetricsMiddleware(s.statusHandler.HandleBadge, "badge"))
	mux.HandleFunc("GET /status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	mux.HandleFunc("GET /inventory", MetricsMiddleware(s.inventoryHandler.HandleList, "inventory"))
	mux.HandleFunc("POST /inventory/levelup", MetricsMiddleware(s.inventoryHandler.HandleLevelUp, "levelup"))
	mux.HandleFunc("GET /feed", MetricsMiddleware(s.feedHandler.HandleFeed, "feed"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // validators cache struct metadata

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps an upstream error onto a status code.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, collection.ErrUnknownEntry), errors.Is(err, inventory.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, collection.ErrNotEligible), errors.Is(err, collection.ErrAlreadyMaxed):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, ErrUnavailable), errors.Is(err, queue.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
