// Package cache is the console's read cache: query results keyed by query
// key, indexed by the tags each result provides, invalidated by tag.
package cache

import (
	"sort"
	"strings"
)

// Tag groups cached reads for invalidation. A tag without an ID is
// list-scoped; with an ID it names one instance.
type Tag struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

func ListTag(typ string) Tag {
	return Tag{Type: typ}
}

func InstanceTag(typ, id string) Tag {
	return Tag{Type: typ, ID: id}
}

func (t Tag) IsList() bool {
	return t.ID == ""
}

func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}
	return t.Type + ":" + t.ID
}

// ParseTag is the inverse of Tag.String.
func ParseTag(s string) Tag {
	typ, id, _ := strings.Cut(s, ":")
	return Tag{Type: typ, ID: id}
}

// Key identifies one cached read: endpoint name plus serialized arguments.
type Key string

// Index maps tag type → tag id → the keys that provided that tag. List-scoped
// tags are stored under the empty id.
type Index map[string]map[string]map[Key]struct{}

func (ix Index) add(key Key, tags []Tag) {
	for _, t := range tags {
		ids, ok := ix[t.Type]
		if !ok {
			ids = make(map[string]map[Key]struct{})
			ix[t.Type] = ids
		}
		keys, ok := ids[t.ID]
		if !ok {
			keys = make(map[Key]struct{})
			ids[t.ID] = keys
		}
		keys[key] = struct{}{}
	}
}

func (ix Index) remove(key Key, tags []Tag) {
	for _, t := range tags {
		ids, ok := ix[t.Type]
		if !ok {
			continue
		}
		if keys, ok := ids[t.ID]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(ids, t.ID)
			}
		}
		if len(ids) == 0 {
			delete(ix, t.Type)
		}
	}
}

// Invalidated returns, sorted and without duplicates, the keys hit by the
// given tags. A list-scoped tag hits every key that provided any tag of its
// type; an instance tag hits only keys that provided that exact instance.
func Invalidated(ix Index, tags []Tag) []Key {
	hit := make(map[Key]struct{})
	for _, t := range tags {
		ids, ok := ix[t.Type]
		if !ok {
			continue
		}
		if t.IsList() {
			for _, keys := range ids {
				for k := range keys {
					hit[k] = struct{}{}
				}
			}
			continue
		}
		for k := range ids[t.ID] {
			hit[k] = struct{}{}
		}
	}

	out := make([]Key, 0, len(hit))
	for k := range hit {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Hits reports whether invalidating tags would hit a read that provided
// provided, with the same granularity as Invalidated.
func Hits(provided, tags []Tag) bool {
	for _, t := range tags {
		for _, p := range provided {
			if p.Type == t.Type && (t.IsList() || p.ID == t.ID) {
				return true
			}
		}
	}
	return false
}
