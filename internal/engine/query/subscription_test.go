package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminconsole/internal/engine/cache"
	"adminconsole/internal/platform/models"
)

func next[R any](t *testing.T, s *Subscription[R]) Result[R] {
	t.Helper()
	select {
	case r, ok := <-s.Updates():
		require.True(t, ok, "updates closed")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no update")
	}
	return Result[R]{}
}

func TestSubscription_EagerRefetchOnInvalidate(t *testing.T) {
	b := newFakeBackend()
	b.set("/organizations/a", models.Organization{ID: "a", Name: "v1"})
	e := newEngine(b)
	ctx := context.Background()

	sub := Subscribe(ctx, e, getOrg, "a")
	defer sub.Close()
	assert.Equal(t, "v1", next(t, sub).Value.Name)

	b.set("/organizations/a", models.Organization{ID: "a", Name: "v2"})
	_, err := Mutate(ctx, e, updateOrg, models.Organization{ID: "a"})
	require.NoError(t, err)

	r := next(t, sub)
	require.NoError(t, r.Err)
	assert.Equal(t, "v2", r.Value.Name)
}

func TestSubscription_StartsFromFreshCache(t *testing.T) {
	b := newFakeBackend()
	b.set("/organizations/a", models.Organization{ID: "a", Name: "cached"})
	e := newEngine(b)
	ctx := context.Background()

	_, err := Query(ctx, e, getOrg, "a")
	require.NoError(t, err)

	sub := Subscribe(ctx, e, getOrg, "a")
	defer sub.Close()
	assert.Equal(t, "cached", next(t, sub).Value.Name)
	assert.Equal(t, 1, b.count("GET /organizations/a"))
}

func TestSubscription_UnrelatedInvalidationIsIgnored(t *testing.T) {
	b := newFakeBackend()
	b.set("/organizations/a", models.Organization{ID: "a"})
	e := newEngine(b)

	sub := Subscribe(context.Background(), e, getOrg, "a")
	defer sub.Close()
	next(t, sub)

	assert.Empty(t, e.Invalidate(context.Background(), []cache.Tag{cache.InstanceTag("ORG", "b")}))
	assert.Equal(t, 0, e.RefetchStale())
	assert.Equal(t, 1, b.count("GET /organizations/a"))
}

func TestSubscription_CloseAbandonsInflight(t *testing.T) {
	b := newFakeBackend()
	b.set("/organizations/a", models.Organization{ID: "a"})
	b.gate = make(chan struct{})
	e := newEngine(b)

	sub := Subscribe(context.Background(), e, getOrg, "a")
	require.Eventually(t, func() bool { return b.count("GET /organizations/a") == 1 }, time.Second, time.Millisecond)

	sub.Close()
	close(b.gate)

	_, ok := <-sub.Updates()
	assert.False(t, ok)
	assert.Never(t, func() bool {
		_, ok := e.Store().Get(sub.Key())
		return ok
	}, 50*time.Millisecond, 5*time.Millisecond)
}

func TestSubscription_WriteDuringFirstFetchRefetches(t *testing.T) {
	b := newFakeBackend()
	b.set("/organizations/a", models.Organization{ID: "a", Name: "v1"})
	gate := make(chan struct{})
	b.gate = gate
	e := newEngine(b)
	ctx := context.Background()

	sub := Subscribe(ctx, e, getOrg, "a")
	defer sub.Close()
	require.Eventually(t, func() bool { return b.count("GET /organizations/a") == 1 }, time.Second, time.Millisecond)

	b.mu.Lock()
	b.gate = nil
	b.values["/organizations/a"] = models.Organization{ID: "a", Name: "v2"}
	b.mu.Unlock()
	_, err := Mutate(ctx, e, updateOrg, models.Organization{ID: "a"})
	require.NoError(t, err)
	close(gate)

	for {
		r := next(t, sub)
		require.NoError(t, r.Err)
		if r.Value.Name == "v2" {
			break
		}
		assert.Equal(t, "v1", r.Value.Name)
	}
	assert.Equal(t, 2, b.count("GET /organizations/a"))
}
