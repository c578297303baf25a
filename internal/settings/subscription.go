package settings

import (
	"context"
	"sync"

	"github.com/alfredjeanlab/modflags/internal/metrics"
	"github.com/alfredjeanlab/modflags/internal/model"
)

// Subscription delivers the current settings once, then every subsequent
// change in the order the updates were applied. Values are queued without
// bound, so a slow reader never blocks Update and never misses a change.
type Subscription struct {
	store *Store
	out   chan model.Settings
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once

	mu    sync.Mutex
	queue []model.Settings
}

// Subscribe registers a new subscriber. The first value received is the
// current settings. Call Close to release it.
func (s *Store) Subscribe() *Subscription {
	sub := &Subscription{
		store: s,
		out:   make(chan model.Settings),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}

	s.mu.Lock()
	sub.push(*s.current.Load())
	closed := s.closed
	if !closed {
		s.subs[sub] = struct{}{}
	}
	s.mu.Unlock()

	metrics.IncSubscribers()
	go sub.pump()
	if closed {
		sub.Close()
	}
	return sub
}

// C returns the delivery channel. It is closed after Close.
func (sub *Subscription) C() <-chan model.Settings { return sub.out }

// Close unregisters the subscription and closes C. It is safe to call more
// than once.
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		sub.store.mu.Lock()
		delete(sub.store.subs, sub)
		sub.store.mu.Unlock()
		close(sub.done)
		metrics.DecSubscribers()
	})
}

func (sub *Subscription) push(v model.Settings) {
	sub.mu.Lock()
	sub.queue = append(sub.queue, v)
	sub.mu.Unlock()
	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

func (sub *Subscription) pump() {
	defer close(sub.out)
	for {
		sub.mu.Lock()
		if len(sub.queue) == 0 {
			sub.mu.Unlock()
			select {
			case <-sub.wake:
				continue
			case <-sub.done:
				return
			}
		}
		v := sub.queue[0]
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()

		select {
		case sub.out <- v:
		case <-sub.done:
			return
		}
	}
}

// Watch calls fn with the current settings and then with every change until
// ctx is cancelled or the store is closed.
func (s *Store) Watch(ctx context.Context, fn func(model.Settings)) {
	sub := s.Subscribe()
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-sub.C():
			if !ok {
				return
			}
			fn(v)
		}
	}
}
