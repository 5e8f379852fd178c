package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/okian/codex/pkg/logger"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
)

// FeedHandler pushes entry notifications over a websocket so a UI can keep
// its badge and collection bars current without polling.
type FeedHandler struct {
	deps     FeedDependencies
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewFeedHandler creates a new feed handler. A nil checkOrigin accepts only
// same-origin requests.
func NewFeedHandler(deps FeedDependencies, l logger.Logger, checkOrigin func(r *http.Request) bool) *FeedHandler {
	if l == nil {
		l = logger.Nop()
	}
	return &FeedHandler{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: l,
	}
}

// HandleFeed handles GET /feed websocket upgrades.
func (h *FeedHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, cancel, err := h.deps.Subscribe(ctx)
	if err != nil {
		writeFailure(w, Wrap("api.feed", err))
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(ctx, "feed upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	// The reader only watches for the client going away.
	gone := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			return
		case n, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			if err := conn.WriteJSON(n); err != nil {
				h.logger.Debug(ctx, "feed write failed", logger.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
