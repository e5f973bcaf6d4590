package query

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"adminconsole/internal/engine/cache"
)

// Result is one delivery to a subscriber.
type Result[R any] struct {
	Value R
	Err   error
}

// Subscription keeps a read mounted: it is re-fetched whenever it goes stale
// and every result is delivered on Updates. Only the newest undelivered
// result is kept.
type Subscription[R any] struct {
	ID string

	key     cache.Key
	e       *Engine
	ctx     context.Context
	cancel  context.CancelFunc
	release func()
	fetch   func(ctx context.Context) (R, error)
	updates chan Result[R]

	mu      sync.Mutex
	closed  bool
	running bool
	again   bool
}

// Subscribe mounts the read. The first result is the cached value when it
// is fresh, otherwise a fetch starts immediately.
func Subscribe[A, R any](ctx context.Context, e *Engine, def QueryDef[A, R], arg A) *Subscription[R] {
	key := def.Key(ctx, e, arg)
	subCtx, cancel := context.WithCancel(ctx)

	s := &Subscription[R]{
		ID:      uuid.NewString(),
		key:     key,
		e:       e,
		ctx:     subCtx,
		cancel:  cancel,
		release: e.store.Subscribe(key),
		updates: make(chan Result[R], 1),
		fetch: func(ctx context.Context) (R, error) {
			return fetch(ctx, e, def, arg, key)
		},
	}
	e.register(key, s)

	if entry, ok := e.store.Get(key); ok && !entry.Stale {
		if v, ok := entry.Value.(R); ok {
			s.deliver(Result[R]{Value: v})
			return s
		}
	}
	go s.refetch()
	return s
}

func (s *Subscription[R]) Key() cache.Key {
	return s.key
}

func (s *Subscription[R]) Updates() <-chan Result[R] {
	return s.updates
}

func (s *Subscription[R]) refetch() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.running {
		s.again = true
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	for {
		v, err := s.fetch(s.ctx)
		if s.ctx.Err() != nil {
			return
		}
		s.deliver(Result[R]{Value: v, Err: err})

		s.mu.Lock()
		if !s.again || s.closed {
			s.running = false
			s.mu.Unlock()
			return
		}
		s.again = false
		s.mu.Unlock()
	}
}

func (s *Subscription[R]) deliver(r Result[R]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.updates:
	default:
	}
	s.updates <- r
}

// Close unmounts the read. An in-flight fetch is abandoned and Updates is
// closed.
func (s *Subscription[R]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.updates)
	s.mu.Unlock()

	s.cancel()
	s.e.unregister(s.key, s)
	s.release()
}
