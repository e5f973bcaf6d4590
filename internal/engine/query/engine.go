// Package query executes endpoint descriptors against the backend through a
// tag-indexed cache. Reads provide tags, successful writes invalidate them,
// and mounted subscriptions are re-fetched as soon as they go stale.
package query

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"adminconsole/internal/engine/cache"
	"adminconsole/internal/pkg/logger"
	"adminconsole/internal/platform/models"
	"adminconsole/internal/transport"
)

// Doer is the transport the engine calls.
type Doer interface {
	Do(ctx context.Context, req transport.Request) (*models.Envelope[json.RawMessage], error)
}

// Publisher forwards locally applied invalidations to other console
// replicas.
type Publisher interface {
	Publish(ctx context.Context, tags []cache.Tag) error
}

type refetcher interface {
	refetch()
}

type Engine struct {
	client    Doer
	store     *cache.Store
	publisher Publisher
	scope     func(ctx context.Context) string
	log       zerolog.Logger

	mu   sync.Mutex
	subs map[cache.Key]map[refetcher]struct{}
}

type Option func(*Engine)

func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithScope partitions cache keys, e.g. per console session.
func WithScope(fn func(ctx context.Context) string) Option {
	return func(e *Engine) { e.scope = fn }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func New(client Doer, store *cache.Store, opts ...Option) *Engine {
	e := &Engine{
		client: client,
		store:  store,
		log:    logger.Component("query"),
		subs:   make(map[cache.Key]map[refetcher]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	store.OnInvalidate(e.onInvalidate)
	return e
}

func (e *Engine) Store() *cache.Store {
	return e.store
}

func (e *Engine) scopeOf(ctx context.Context) string {
	if e.scope == nil {
		return ""
	}
	return e.scope(ctx)
}

// KeyFor builds the cache key of a read: optional scope, endpoint name and
// the JSON form of its argument.
func KeyFor(scope, name string, arg any) cache.Key {
	b, err := json.Marshal(arg)
	if err != nil {
		b = []byte("?")
	}
	k := name + "(" + string(b) + ")"
	if scope != "" {
		k = scope + "/" + k
	}
	return cache.Key(k)
}

// Invalidate marks the reads providing tags stale, re-fetches the mounted
// ones and forwards the tags to the publisher.
func (e *Engine) Invalidate(ctx context.Context, tags []cache.Tag) []cache.Key {
	keys := e.apply(tags)
	if e.publisher != nil && len(tags) > 0 {
		if err := e.publisher.Publish(ctx, tags); err != nil {
			e.log.Warn().Err(err).Msg("failed to publish invalidation")
		}
	}
	return keys
}

// ApplyRemote applies tags received from another replica without
// publishing them again.
func (e *Engine) ApplyRemote(tags []cache.Tag) []cache.Key {
	return e.apply(tags)
}

func (e *Engine) apply(tags []cache.Tag) []cache.Key {
	keys := e.store.Invalidate(tags)
	if len(keys) > 0 {
		e.log.Debug().Int("keys", len(keys)).Interface("tags", tags).Msg("invalidated")
	}
	return keys
}

// Forget drops every cached read of the scope carried by ctx.
func (e *Engine) Forget(ctx context.Context) int {
	scope := e.scopeOf(ctx)
	if scope == "" {
		n := e.store.Len()
		e.store.Reset()
		return n
	}
	return e.store.DropPrefix(scope + "/")
}

// RefetchStale re-fetches every mounted read that is stale or has never
// completed. It returns how many subscriptions were triggered.
func (e *Engine) RefetchStale() int {
	return e.trigger(e.store.StaleSubscribed())
}

func (e *Engine) onInvalidate(keys []cache.Key) {
	e.trigger(keys)
}

func (e *Engine) trigger(keys []cache.Key) int {
	e.mu.Lock()
	var targets []refetcher
	for _, k := range keys {
		for r := range e.subs[k] {
			targets = append(targets, r)
		}
	}
	e.mu.Unlock()

	for _, r := range targets {
		go r.refetch()
	}
	return len(targets)
}

func (e *Engine) register(key cache.Key, r refetcher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	set, ok := e.subs[key]
	if !ok {
		set = make(map[refetcher]struct{})
		e.subs[key] = set
	}
	set[r] = struct{}{}
}

func (e *Engine) unregister(key cache.Key, r refetcher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if set, ok := e.subs[key]; ok {
		delete(set, r)
		if len(set) == 0 {
			delete(e.subs, key)
		}
	}
}
