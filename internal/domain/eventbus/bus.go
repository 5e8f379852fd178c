// Package eventbus carries "group changed" notifications from inventories to
// collection entries.
//
// Subscriptions are keyed by (channel, entry id) and are attached or detached
// explicitly by the entry that owns them. Publish is synchronous and
// depth-first: every subscribed handler has returned before Publish does.
// A Bus is not safe for concurrent use; callers keep one thread of control.
package eventbus

import (
	"context"
	"sort"

	"github.com/okian/codex/internal/domain/model"
	"github.com/okian/codex/pkg/metrics"
)

// Handler receives a group notification.
type Handler func(ctx context.Context, n model.GroupNotification)

// Bus is an in-process publish/subscribe table with one channel per category.
type Bus struct {
	subs map[model.Category]map[int]Handler
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[model.Category]map[int]Handler)}
}

// Subscribe attaches entryID to channel ch, replacing any previous handler
// the entry had there.
func (b *Bus) Subscribe(ch model.Category, entryID int, h Handler) {
	if h == nil {
		return
	}
	m, ok := b.subs[ch]
	if !ok {
		m = make(map[int]Handler)
		b.subs[ch] = m
	}
	m[entryID] = h
	metrics.UpdateSubscriptions(ch.String(), len(m))
}

// Unsubscribe detaches entryID from channel ch. It is a no-op when the entry
// is not attached.
func (b *Bus) Unsubscribe(ch model.Category, entryID int) {
	m, ok := b.subs[ch]
	if !ok {
		return
	}
	if _, attached := m[entryID]; !attached {
		return
	}
	delete(m, entryID)
	metrics.UpdateSubscriptions(ch.String(), len(m))
}

// UnsubscribeAll detaches entryID from every channel.
func (b *Bus) UnsubscribeAll(entryID int) {
	for _, ch := range model.Categories {
		b.Unsubscribe(ch, entryID)
	}
}

// Subscribed reports whether entryID is attached to ch.
func (b *Bus) Subscribed(ch model.Category, entryID int) bool {
	_, ok := b.subs[ch][entryID]
	return ok
}

// Count returns the number of entries attached to ch.
func (b *Bus) Count(ch model.Category) int {
	return len(b.subs[ch])
}

// Publish delivers n to every entry attached to n's channel, in ascending
// entry id order, and returns how many handlers ran. The subscriber set is
// fixed when Publish starts; an entry detached by an earlier handler in the
// same publish is skipped.
func (b *Bus) Publish(ctx context.Context, n model.GroupNotification) int {
	ch := n.Category()
	metrics.RecordGroupPublish(ch.String())

	m := b.subs[ch]
	if len(m) == 0 {
		return 0
	}
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	delivered := 0
	for _, id := range ids {
		h, ok := b.subs[ch][id]
		if !ok {
			continue
		}
		h(ctx, n)
		delivered++
	}
	return delivered
}
