package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidated(t *testing.T) {
	ix := make(Index)
	ix.add("getOrganizations({})", []Tag{ListTag("ORG")})
	ix.add("getOrganization(\"a\")", []Tag{InstanceTag("ORG", "a")})
	ix.add("getOrganization(\"b\")", []Tag{InstanceTag("ORG", "b")})
	ix.add("getUsers({})", []Tag{ListTag("USER"), InstanceTag("USER", "u1")})

	tests := []struct {
		name string
		tags []Tag
		want []Key
	}{
		{
			name: "list tag hits every key of the type",
			tags: []Tag{ListTag("ORG")},
			want: []Key{"getOrganization(\"a\")", "getOrganization(\"b\")", "getOrganizations({})"},
		},
		{
			name: "instance tag hits only that instance",
			tags: []Tag{InstanceTag("ORG", "a")},
			want: []Key{"getOrganization(\"a\")"},
		},
		{
			name: "unknown instance hits nothing",
			tags: []Tag{InstanceTag("ORG", "zzz")},
			want: []Key{},
		},
		{
			name: "unknown type hits nothing",
			tags: []Tag{ListTag("PAYMENT")},
			want: []Key{},
		},
		{
			name: "overlapping tags are de-duplicated",
			tags: []Tag{ListTag("USER"), InstanceTag("USER", "u1")},
			want: []Key{"getUsers({})"},
		},
		{
			name: "no tags",
			tags: nil,
			want: []Key{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Invalidated(ix, tt.tags))
		})
	}
}

func TestIndexRemove(t *testing.T) {
	ix := make(Index)
	ix.add("k", []Tag{ListTag("ORG"), InstanceTag("ORG", "a")})
	ix.remove("k", []Tag{ListTag("ORG"), InstanceTag("ORG", "a")})

	assert.Empty(t, ix)
	assert.Empty(t, Invalidated(ix, []Tag{ListTag("ORG")}))
}

func TestParseTag(t *testing.T) {
	for _, tag := range []Tag{ListTag("ORG"), InstanceTag("SUPPORT_TICKET", "64b7f0c2a1b2c3d4e5f60718")} {
		assert.Equal(t, tag, ParseTag(tag.String()))
	}
	assert.True(t, ParseTag("PLAN").IsList())
	assert.Equal(t, "PLAN:p1", InstanceTag("PLAN", "p1").String())
}

func TestHits(t *testing.T) {
	provided := []Tag{ListTag("ORG"), InstanceTag("ORG", "a")}

	assert.True(t, Hits(provided, []Tag{ListTag("ORG")}))
	assert.True(t, Hits(provided, []Tag{InstanceTag("PLAN", "p"), InstanceTag("ORG", "a")}))
	assert.True(t, Hits([]Tag{InstanceTag("ORG", "b")}, []Tag{ListTag("ORG")}))
	assert.False(t, Hits(provided, []Tag{InstanceTag("ORG", "b")}))
	assert.False(t, Hits(provided, []Tag{ListTag("PLAN")}))
	assert.False(t, Hits(provided, nil))
}
