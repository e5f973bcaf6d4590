package cache

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// Entry is a snapshot of one cached read.
type Entry struct {
	Value     any
	Tags      []Tag
	Stale     bool
	FetchedAt time.Time
}

type entry struct {
	value       any
	tags        []Tag
	stale       bool
	fetchedAt   time.Time
	lastUsed    time.Time
	subscribers int
	inflight    map[*Fetch]struct{}
}

// Fetch is a ticket for one in-flight read. A fetch that is abandoned before
// it completes, or whose context ends first, has its result discarded.
// missed collects the tags invalidated while it was in flight.
type Fetch struct {
	key       Key
	ctx       context.Context
	abandoned bool
	missed    []Tag
}

func (f *Fetch) Key() Key {
	return f.key
}

// Store holds the cached reads and the tag index over them. All methods are
// safe for concurrent use; listeners run outside the lock.
type Store struct {
	mu        sync.Mutex
	entries   map[Key]*entry
	index     Index
	listeners []func(keys []Key)
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries: make(map[Key]*entry),
		index:   make(Index),
		now:     time.Now,
	}
}

func (s *Store) entryLocked(key Key) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{inflight: make(map[*Fetch]struct{})}
		s.entries[key] = e
	}
	return e
}

// Get returns the cached entry for key. ok is false when nothing has been
// fetched yet.
func (s *Store) Get(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.fetchedAt.IsZero() {
		return Entry{}, false
	}
	e.lastUsed = s.now()
	return Entry{
		Value:     e.value,
		Tags:      append([]Tag(nil), e.tags...),
		Stale:     e.stale,
		FetchedAt: e.fetchedAt,
	}, true
}

// Begin registers an in-flight read for key.
func (s *Store) Begin(key Key) *Fetch {
	return s.BeginContext(context.Background(), key)
}

// BeginContext is Begin for a read owned by ctx: once ctx is done the
// result is discarded.
func (s *Store) BeginContext(ctx context.Context, key Key) *Fetch {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := &Fetch{key: key, ctx: ctx}
	e := s.entryLocked(key)
	e.inflight[f] = struct{}{}
	e.lastUsed = s.now()
	return f
}

// Complete replaces the entry's value and tags with a fetch result. It
// reports false, leaving the entry untouched, when the fetch was abandoned.
// A result hit by an invalidation that landed while it was in flight is
// stored stale, and listeners are told when the key is mounted.
func (s *Store) Complete(f *Fetch, value any, tags []Tag) bool {
	s.mu.Lock()
	e, ok := s.entries[f.key]
	if ok {
		delete(e.inflight, f)
	}
	if !ok || f.abandoned || (f.ctx != nil && f.ctx.Err() != nil) {
		s.mu.Unlock()
		return false
	}

	s.index.remove(f.key, e.tags)
	e.value = value
	e.tags = append([]Tag(nil), tags...)
	e.stale = Hits(e.tags, f.missed)
	e.fetchedAt = s.now()
	e.lastUsed = e.fetchedAt
	s.index.add(f.key, e.tags)

	var mounted []Key
	if e.stale && e.subscribers > 0 {
		mounted = []Key{f.key}
	}
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, mounted)
	return true
}

// Fail ends a fetch that returned an error. The previous value and its
// staleness stay as they were for every other reader.
func (s *Store) Fail(f *Fetch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[f.key]; ok {
		delete(e.inflight, f)
		if e.fetchedAt.IsZero() && e.subscribers == 0 && len(e.inflight) == 0 {
			delete(s.entries, f.key)
		}
	}
}

func (s *Store) Abandon(f *Fetch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abandonLocked(f)
}

func (s *Store) abandonLocked(f *Fetch) {
	f.abandoned = true
	if e, ok := s.entries[f.key]; ok {
		delete(e.inflight, f)
	}
}

// Invalidate marks every entry hit by tags as stale and returns the keys.
// Listeners receive the hit keys that currently have subscribers.
func (s *Store) Invalidate(tags []Tag) []Key {
	s.mu.Lock()
	keys := Invalidated(s.index, tags)
	var mounted []Key
	for _, k := range keys {
		e := s.entries[k]
		e.stale = true
		if e.subscribers > 0 {
			mounted = append(mounted, k)
		}
	}
	for _, e := range s.entries {
		for f := range e.inflight {
			f.missed = append(f.missed, tags...)
		}
	}
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, mounted)
	return keys
}

func notify(listeners []func([]Key), keys []Key) {
	if len(keys) == 0 {
		return
	}
	for _, fn := range listeners {
		fn(keys)
	}
}

// OnInvalidate registers fn to be called with stale keys that have
// subscribers, so they can be re-fetched eagerly.
func (s *Store) OnInvalidate(fn func(keys []Key)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Subscribe marks key as mounted until the returned release is called.
// Fetches a subscriber starts are ended through their own context, so
// releasing never touches reads other callers have in flight.
func (s *Store) Subscribe(key Key) (release func()) {
	s.mu.Lock()
	e := s.entryLocked(key)
	e.subscribers++
	e.lastUsed = s.now()
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			e, ok := s.entries[key]
			if !ok {
				return
			}
			e.subscribers--
			e.lastUsed = s.now()
		})
	}
}

// StaleSubscribed lists mounted keys whose value is stale or missing.
func (s *Store) StaleSubscribed() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Key
	for k, e := range s.entries {
		if e.subscribers > 0 && len(e.inflight) == 0 && (e.stale || e.fetchedAt.IsZero()) {
			out = append(out, k)
		}
	}
	return out
}

// Sweep drops entries nobody subscribes to or fetches that have not been
// used for longer than maxIdle. It returns how many were dropped.
func (s *Store) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	n := 0
	for k, e := range s.entries {
		if e.subscribers > 0 || len(e.inflight) > 0 || e.lastUsed.After(cutoff) {
			continue
		}
		s.index.remove(k, e.tags)
		delete(s.entries, k)
		n++
	}
	return n
}

// Reset empties the cache and abandons every in-flight fetch.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		for f := range e.inflight {
			f.abandoned = true
		}
	}
	s.entries = make(map[Key]*entry)
	s.index = make(Index)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// DropPrefix removes every entry whose key starts with prefix, abandoning
// its in-flight fetches. It returns how many entries were dropped.
func (s *Store) DropPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.entries {
		if !strings.HasPrefix(string(k), prefix) {
			continue
		}
		for f := range e.inflight {
			f.abandoned = true
		}
		s.index.remove(k, e.tags)
		delete(s.entries, k)
		n++
	}
	return n
}
