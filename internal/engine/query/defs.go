package query

import (
	"context"
	"fmt"

	"adminconsole/internal/engine/cache"
	"adminconsole/internal/transport"
)

// QueryDef describes a read endpoint.
type QueryDef[A, R any] struct {
	Name     string
	Request  func(arg A) transport.Request
	Provides func(arg A, result R) []cache.Tag
}

// MutationDef describes a write endpoint. Invalidates is only consulted after
// the backend accepted the write.
type MutationDef[A, R any] struct {
	Name        string
	Request     func(arg A) transport.Request
	Invalidates func(arg A, result R) []cache.Tag
}

func (d QueryDef[A, R]) Key(ctx context.Context, e *Engine, arg A) cache.Key {
	return KeyFor(e.scopeOf(ctx), d.Name, arg)
}

// Query returns the cached result when it is fresh and fetches it otherwise.
func Query[A, R any](ctx context.Context, e *Engine, def QueryDef[A, R], arg A) (R, error) {
	key := def.Key(ctx, e, arg)
	if entry, ok := e.store.Get(key); ok && !entry.Stale {
		if v, ok := entry.Value.(R); ok {
			return v, nil
		}
	}
	return fetch(ctx, e, def, arg, key)
}

// Refetch bypasses the cache and replaces the entry with a fresh result.
func Refetch[A, R any](ctx context.Context, e *Engine, def QueryDef[A, R], arg A) (R, error) {
	return fetch(ctx, e, def, arg, def.Key(ctx, e, arg))
}

func fetch[A, R any](ctx context.Context, e *Engine, def QueryDef[A, R], arg A, key cache.Key) (R, error) {
	var zero R
	f := e.store.BeginContext(ctx, key)

	env, err := e.client.Do(ctx, def.Request(arg))
	if ctx.Err() != nil {
		e.store.Abandon(f)
		if err == nil {
			err = ctx.Err()
		}
		return zero, err
	}
	if err != nil {
		e.store.Fail(f)
		return zero, err
	}

	var result R
	if err := transport.Decode(env, &result); err != nil {
		e.store.Fail(f)
		return zero, fmt.Errorf("decode %s: %w", def.Name, err)
	}

	var tags []cache.Tag
	if def.Provides != nil {
		tags = def.Provides(arg, result)
	}
	if !e.store.Complete(f, result, tags) {
		e.log.Debug().Str("key", string(key)).Msg("discarded abandoned fetch")
	}
	return result, nil
}

// Mutate performs a write. Once the backend accepted it the declared tags
// are invalidated, even when its result does not decode; a failed write
// invalidates nothing.
func Mutate[A, R any](ctx context.Context, e *Engine, def MutationDef[A, R], arg A) (R, error) {
	var zero R
	env, err := e.client.Do(ctx, def.Request(arg))
	if err != nil {
		return zero, err
	}

	var result R
	decodeErr := transport.Decode(env, &result)
	if decodeErr != nil {
		result = zero
	}
	if def.Invalidates != nil {
		e.Invalidate(context.WithoutCancel(ctx), def.Invalidates(arg, result))
	}
	if decodeErr != nil {
		return zero, fmt.Errorf("decode %s: %w", def.Name, decodeErr)
	}
	return result, nil
}
