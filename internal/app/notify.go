package service

import (
	"context"
	"sync"

	"github.com/okian/codex/internal/domain/types"
	"github.com/okian/codex/pkg/metrics"
)

// notifier fans registry notifications out to subscribers. A subscriber that
// falls behind loses notifications instead of stalling the engine.
type notifier struct {
	mu     sync.Mutex
	subs   map[int]chan types.Notification
	nextID int
	buffer int
	badge  func() bool
}

func newNotifier(buffer int, badge func() bool) *notifier {
	return &notifier{subs: make(map[int]chan types.Notification), buffer: buffer, badge: badge}
}

func (n *notifier) subscribe() (<-chan types.Notification, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	ch := make(chan types.Notification, n.buffer)
	n.subs[id] = ch
	metrics.UpdateFeedClients(len(n.subs))

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if c, ok := n.subs[id]; ok {
				delete(n.subs, id)
				close(c)
			}
			metrics.UpdateFeedClients(len(n.subs))
		})
	}
}

func (n *notifier) closeAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, c := range n.subs {
		delete(n.subs, id)
		close(c)
	}
	metrics.UpdateFeedClients(0)
}

func (n *notifier) send(msg types.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, c := range n.subs {
		select {
		case c <- msg:
		default:
		}
	}
}

// EligibilityChanged implements collection.Listener.
func (n *notifier) EligibilityChanged(_ context.Context, entryID int, eligible bool) {
	n.send(types.Notification{Kind: types.KindEligibility, EntryID: entryID, Eligible: eligible, Badge: n.badge()})
}

// TierAdvanced implements collection.Listener.
func (n *notifier) TierAdvanced(_ context.Context, entryID, from, to int) {
	n.send(types.Notification{Kind: types.KindAdvance, EntryID: entryID, From: from, To: to, Badge: n.badge()})
}
