package server

import (
	"context"
	"sync"

	"codeberg.org/mutker/motortemp/internal/errors"
	"codeberg.org/mutker/motortemp/internal/logger"
	"codeberg.org/mutker/motortemp/internal/marker"
	"codeberg.org/mutker/motortemp/internal/metrics"
	"github.com/google/uuid"
)

// Subscription receives marker batches. At most one batch is pending; a
// newer batch replaces an undelivered one.
type Subscription struct {
	ID      string
	pending chan marker.Array
	done    chan struct{}
	once    sync.Once
}

// C delivers batches.
func (s *Subscription) C() <-chan marker.Array {
	return s.pending
}

// Done is closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.done) })
}

// offer replaces any pending batch with batch. Only called with the hub
// lock held, so there is a single producer.
func (s *Subscription) offer(batch marker.Array) bool {
	select {
	case s.pending <- batch:
		return false
	default:
	}

	select {
	case <-s.pending:
	default:
	}

	select {
	case s.pending <- batch:
	default:
	}
	return true
}

// Hub fans published batches out to marker feed subscribers.
type Hub struct {
	mu       sync.RWMutex
	subs     map[string]*Subscription
	latest   *marker.Array
	closed   bool
	recorder metrics.Recorder
}

func NewHub(recorder metrics.Recorder) *Hub {
	if recorder == nil {
		recorder = metrics.Noop()
	}
	return &Hub{
		subs:     make(map[string]*Subscription),
		recorder: recorder,
	}
}

// Publish implements publisher.Sink. It never blocks on slow subscribers.
func (h *Hub) Publish(_ context.Context, batch marker.Array) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return errors.New().New(ErrHubClosed)
	}

	h.latest = &batch
	for _, sub := range h.subs {
		if sub.offer(batch) {
			logger.Debug().
				Str("subscriber", sub.ID).
				Uint64("seq", batch.Seq).
				Msg("Subscriber lagging, dropped older batch")
		}
	}

	return nil
}

// Latest returns the last published batch.
func (h *Hub) Latest() (marker.Array, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.latest == nil {
		return marker.Array{}, false
	}
	return *h.latest, true
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errors.New().New(ErrHubClosed)
	}

	sub := &Subscription{
		ID:      uuid.NewString(),
		pending: make(chan marker.Array, 1),
		done:    make(chan struct{}),
	}
	h.subs[sub.ID] = sub
	h.recorder.SubscribersChanged(context.Background(), 1)

	logger.Info().Str("subscriber", sub.ID).Int("subscribers", len(h.subs)).Msg("Marker subscriber connected")

	return sub, nil
}

// Unsubscribe removes a subscriber. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	sub.close()
	h.recorder.SubscribersChanged(context.Background(), -1)

	logger.Info().Str("subscriber", id).Int("subscribers", len(h.subs)).Msg("Marker subscriber disconnected")
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription and rejects further publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		sub.close()
		delete(h.subs, id)
		h.recorder.SubscribersChanged(context.Background(), -1)
	}
}
