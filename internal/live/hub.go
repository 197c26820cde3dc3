// Package live pushes full snapshots of the item set to feed subscribers.
package live

import (
	"context"
	"sync"
	"time"

	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/bep/debounce"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned when the hub or the subscription is closed.
var ErrClosed = errors.New("live: closed")

type (
	// A Loader returns the complete current item set.
	Loader func() ([]*model.Item, error)

	// A Snapshot is the item set at a given point in time.
	// Sequence strictly increases between two snapshots of the same hub.
	Snapshot struct {
		Sequence uint64
		Items    []*model.Item
		At       time.Time
	}

	// A Hub fans snapshots out to subscribers.
	Hub struct {
		load      Loader
		logger    logrus.FieldLogger
		debounced func(f func())

		publishing sync.Mutex // serializes load and broadcast

		mu     sync.Mutex
		subs   map[*Subscription]struct{}
		seq    uint64
		last   *Snapshot
		closed bool
	}

	// A Subscription receives the snapshots of a hub.
	// Only the latest undelivered snapshot is kept.
	Subscription struct {
		hub  *Hub
		ch   chan Snapshot
		seen uint64
	}
)

// NewHub returns a new Hub. Change signals received within wait are coalesced into one snapshot.
func NewHub(load Loader, wait time.Duration, logger logrus.FieldLogger) *Hub {
	return &Hub{
		load:      load,
		logger:    logger,
		debounced: debounce.New(wait),
		subs:      map[*Subscription]struct{}{},
	}
}

// Changed signals that the item set has changed.
func (h *Hub) Changed() {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return
	}

	h.debounced(func() {
		if err := h.Publish(); err != nil && err != ErrClosed {
			h.logger.WithError(err).Error("could not publish live snapshot")
		}
	})
}

// Publish loads the item set and sends it to every subscriber.
func (h *Hub) Publish() error {
	h.publishing.Lock()
	defer h.publishing.Unlock()

	items, err := h.load()
	if err != nil {
		return errors.Wrap(err, "could not load items")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}

	h.seq++
	snapshot := &Snapshot{
		Sequence: h.seq,
		Items:    items,
		At:       time.Now().UTC(),
	}
	h.last = snapshot

	for s := range h.subs {
		s.offer(*snapshot)
	}
	return nil
}

// Subscribe registers a new subscriber that immediately receives the current snapshot.
func (h *Hub) Subscribe() (*Subscription, error) {
	s := &Subscription{
		hub: h,
		ch:  make(chan Snapshot, 1),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	h.subs[s] = struct{}{}
	last := h.last
	if last != nil {
		s.offer(*last)
	}
	h.mu.Unlock()

	if last == nil {
		if err := h.Publish(); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes all the subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.closed = true
	for s := range h.subs {
		close(s.ch)
		delete(h.subs, s)
	}
}

// offer must be called with the hub lock held.
func (s *Subscription) offer(snapshot Snapshot) {
	select {
	case s.ch <- snapshot:
		return
	default:
	}

	// Replace the stale snapshot.
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snapshot:
	default:
	}
}

// C returns the channel delivering snapshots. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Snapshot {
	return s.ch
}

// Next waits for a snapshot newer than the last one returned.
func (s *Subscription) Next(ctx context.Context) (Snapshot, error) {
	for {
		select {
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		case snapshot, ok := <-s.ch:
			if !ok {
				return Snapshot{}, ErrClosed
			}
			if snapshot.Sequence <= s.seen {
				continue
			}
			s.seen = snapshot.Sequence
			return snapshot, nil
		}
	}
}

// Close unregisters the subscription.
func (s *Subscription) Close() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.ch)
	}
}
