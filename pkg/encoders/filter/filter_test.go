package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wisp.relay/pkg/encoders/event"
	"wisp.relay/pkg/encoders/tag"
)

func mustHex(s string) []byte {
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		var b int
		for j := 0; j < 2; j++ {
			c := s[i*2+j]
			b <<= 4
			switch {
			case c >= '0' && c <= '9':
				b |= int(c - '0')
			case c >= 'a' && c <= 'f':
				b |= int(c-'a') + 10
			}
		}
		out[i] = byte(b)
	}
	return out
}

func TestFilter_UnmarshalLiftsTagKeys(t *testing.T) {
	var f F
	require.NoError(t, json.Unmarshal([]byte(`{"kinds":[1,2],"#e":["abc"],"since":100}`), &f))
	assert.Equal(t, []int{1, 2}, f.Kinds)
	assert.Equal(t, []string{"abc"}, f.Tags["e"])
	require.NotNil(t, f.Since)
	assert.Equal(t, int64(100), *f.Since)
}

func TestFilter_MatchesIDPrefix(t *testing.T) {
	id := "aabbccdd" + "00000000000000000000000000000000000000000000000000000000"
	e := event.New()
	e.ID = mustHex(id)
	e.Pubkey = make([]byte, 32)
	e.CreatedAt = 1000

	f := &F{IDs: []string{"aabbccdd"}}
	assert.True(t, f.Matches(e))

	f2 := &F{IDs: []string{"ffffffff"}}
	assert.False(t, f2.Matches(e))
}

func TestFilter_MatchesTagAndRange(t *testing.T) {
	e := event.New()
	e.ID = make([]byte, 32)
	e.Pubkey = make([]byte, 32)
	e.CreatedAt = 500
	e.Tags.Append(tag.New("e", "ref1"))

	since := int64(100)
	until := int64(1000)
	f := &F{Since: &since, Until: &until, Tags: map[string][]string{"e": {"ref1"}}}
	assert.True(t, f.Matches(e))

	f2 := &F{Tags: map[string][]string{"e": {"nope"}}}
	assert.False(t, f2.Matches(e))
}

func TestFilterSet_MatchesAnyFilter(t *testing.T) {
	e := event.New()
	e.ID = make([]byte, 32)
	e.Pubkey = make([]byte, 32)
	e.Kind = 1
	e.CreatedAt = 1

	s := S{&F{Kinds: []int{2}}, &F{Kinds: []int{1}}}
	assert.True(t, s.Matches(e))

	s2 := S{&F{Kinds: []int{2}}}
	assert.False(t, s2.Matches(e))
}
