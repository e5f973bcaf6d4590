package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, s *Store, key Key, value any, tags ...Tag) {
	t.Helper()
	require.True(t, s.Complete(s.Begin(key), value, tags))
}

func TestStore_InvalidateAfterWrite(t *testing.T) {
	s := NewStore()
	fill(t, s, "orgs", []string{"a", "b"}, ListTag("ORG"), InstanceTag("ORG", "a"), InstanceTag("ORG", "b"))
	fill(t, s, "org:a", "a", InstanceTag("ORG", "a"))
	fill(t, s, "org:b", "b", InstanceTag("ORG", "b"))
	fill(t, s, "plans", []string{"p"}, ListTag("PLAN"))

	keys := s.Invalidate([]Tag{InstanceTag("ORG", "a")})
	assert.Equal(t, []Key{"org:a", "orgs"}, keys)

	for key, stale := range map[Key]bool{"orgs": true, "org:a": true, "org:b": false, "plans": false} {
		e, ok := s.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, stale, e.Stale, key)
	}

	s.Invalidate([]Tag{ListTag("ORG")})
	e, _ := s.Get("org:b")
	assert.True(t, e.Stale)
	e, _ = s.Get("plans")
	assert.False(t, e.Stale)
}

func TestStore_CompleteReplacesAtomically(t *testing.T) {
	s := NewStore()
	fill(t, s, "org:a", "v1", InstanceTag("ORG", "a"), ListTag("ORG"))
	s.Invalidate([]Tag{ListTag("ORG")})

	fill(t, s, "org:a", "v2", InstanceTag("ORG", "a"))

	e, ok := s.Get("org:a")
	require.True(t, ok)
	assert.Equal(t, "v2", e.Value)
	assert.False(t, e.Stale)
	assert.Equal(t, []Tag{InstanceTag("ORG", "a")}, e.Tags)

	// the old list tag no longer points at the key
	assert.Equal(t, []Key{"org:a"}, s.Invalidate([]Tag{ListTag("ORG")}))
	assert.Empty(t, s.Invalidate([]Tag{InstanceTag("ORG", "b")}))
}

func TestStore_LastCompletionWins(t *testing.T) {
	s := NewStore()
	first := s.Begin("k")
	second := s.Begin("k")

	require.True(t, s.Complete(second, "second", nil))
	require.True(t, s.Complete(first, "first", nil))

	e, _ := s.Get("k")
	assert.Equal(t, "first", e.Value)
}

func TestStore_FailLeavesEntryUntouched(t *testing.T) {
	s := NewStore()
	fill(t, s, "k", "old", ListTag("ORG"))
	s.Invalidate([]Tag{ListTag("ORG")})

	s.Fail(s.Begin("k"))

	e, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "old", e.Value)
	assert.True(t, e.Stale)

	s.Fail(s.Begin("never-fetched"))
	_, ok = s.Get("never-fetched")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestStore_AbandonedFetchIsDiscarded(t *testing.T) {
	s := NewStore()
	fill(t, s, "k", "old")

	f := s.Begin("k")
	s.Abandon(f)
	assert.False(t, s.Complete(f, "new", nil))

	e, _ := s.Get("k")
	assert.Equal(t, "old", e.Value)
}

func TestStore_ReleaseKeepsOtherReaders(t *testing.T) {
	s := NewStore()
	release := s.Subscribe("k")
	f := s.Begin("k")

	release()
	release()

	require.True(t, s.Complete(f, "plain read", nil))
	e, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "plain read", e.Value)
}

func TestStore_EndedContextDiscardsFetch(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	f := s.BeginContext(ctx, "k")

	cancel()

	assert.False(t, s.Complete(f, "late", nil))
	_, ok := s.Get("k")
	assert.False(t, ok)
}

func TestStore_InvalidationDuringFetch(t *testing.T) {
	t.Run("first fetch is stored stale", func(t *testing.T) {
		s := NewStore()
		f := s.Begin("org:a")

		assert.Empty(t, s.Invalidate([]Tag{InstanceTag("ORG", "a")}))
		require.True(t, s.Complete(f, "old", []Tag{InstanceTag("ORG", "a")}))

		e, ok := s.Get("org:a")
		require.True(t, ok)
		assert.True(t, e.Stale)
	})

	t.Run("refetch stays stale", func(t *testing.T) {
		s := NewStore()
		fill(t, s, "orgs", "v1", ListTag("ORG"), InstanceTag("ORG", "a"))
		f := s.Begin("orgs")

		assert.Equal(t, []Key{"orgs"}, s.Invalidate([]Tag{InstanceTag("ORG", "a")}))
		require.True(t, s.Complete(f, "v1 again", []Tag{ListTag("ORG"), InstanceTag("ORG", "a")}))

		e, _ := s.Get("orgs")
		assert.True(t, e.Stale)
	})

	t.Run("unrelated tags leave it fresh", func(t *testing.T) {
		s := NewStore()
		f := s.Begin("org:a")

		s.Invalidate([]Tag{InstanceTag("ORG", "b"), ListTag("PLAN")})
		require.True(t, s.Complete(f, "a", []Tag{InstanceTag("ORG", "a")}))

		e, _ := s.Get("org:a")
		assert.False(t, e.Stale)
	})

	t.Run("invalidations before the fetch do not count", func(t *testing.T) {
		s := NewStore()
		s.Invalidate([]Tag{ListTag("ORG")})
		fill(t, s, "org:a", "a", InstanceTag("ORG", "a"))

		e, _ := s.Get("org:a")
		assert.False(t, e.Stale)
	})

	t.Run("mounted key is handed to listeners", func(t *testing.T) {
		s := NewStore()
		release := s.Subscribe("org:a")
		defer release()
		var got []Key
		s.OnInvalidate(func(keys []Key) { got = append(got, keys...) })

		f := s.Begin("org:a")
		s.Invalidate([]Tag{ListTag("ORG")})
		assert.Empty(t, got)

		require.True(t, s.Complete(f, "old", []Tag{InstanceTag("ORG", "a")}))
		assert.Equal(t, []Key{"org:a"}, got)
	})
}

func TestStore_ListenersSeeSubscribedKeysOnly(t *testing.T) {
	s := NewStore()
	fill(t, s, "mounted", 1, ListTag("TASK"))
	fill(t, s, "idle", 2, ListTag("TASK"))
	release := s.Subscribe("mounted")
	defer release()

	var got []Key
	s.OnInvalidate(func(keys []Key) { got = append(got, keys...) })

	s.Invalidate([]Tag{ListTag("TASK")})
	assert.Equal(t, []Key{"mounted"}, got)
	assert.Equal(t, []Key{"mounted"}, s.StaleSubscribed())

	got = nil
	s.Invalidate([]Tag{ListTag("PLAN")})
	assert.Nil(t, got)
}

func TestStore_Sweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore()
	s.now = func() time.Time { return now }

	fill(t, s, "old", 1, ListTag("LOG"))
	fill(t, s, "mounted", 2, ListTag("LOG"))
	release := s.Subscribe("mounted")
	defer release()

	now = now.Add(2 * time.Minute)
	fill(t, s, "fresh", 3, ListTag("LOG"))

	assert.Equal(t, 1, s.Sweep(time.Minute))
	_, ok := s.Get("old")
	assert.False(t, ok)
	assert.Equal(t, []Key{"fresh", "mounted"}, s.Invalidate([]Tag{ListTag("LOG")}))
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	fill(t, s, "k", 1, ListTag("USER"))
	f := s.Begin("k2")

	s.Reset()

	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Complete(f, 2, nil))
	assert.Empty(t, s.Invalidate([]Tag{ListTag("USER")}))
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			f := s.Begin("k")
			s.Complete(f, i, []Tag{ListTag("ORG")})
		}(i)
		go func() {
			defer wg.Done()
			s.Invalidate([]Tag{ListTag("ORG")})
		}()
	}
	wg.Wait()

	_, ok := s.Get("k")
	assert.True(t, ok)
}

func TestStore_DropPrefix(t *testing.T) {
	s := NewStore()
	fill(t, s, "sess-a/getPlans({})", 1, ListTag("PLAN"))
	fill(t, s, "sess-b/getPlans({})", 2, ListTag("PLAN"))
	f := s.Begin("sess-a/getMe(null)")

	assert.Equal(t, 2, s.DropPrefix("sess-a/"))
	assert.False(t, s.Complete(f, "me", nil))
	assert.Equal(t, []Key{"sess-b/getPlans({})"}, s.Invalidate([]Tag{ListTag("PLAN")}))
}
