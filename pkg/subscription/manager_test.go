package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wisp.relay/pkg/encoders/filter"
)

func TestManager_AddFindRemove(t *testing.T) {
	m := New()
	require.NoError(t, m.Add(1, "sub1", filter.S{&filter.F{Kinds: []int{1}}}))
	assert.Equal(t, 1, m.Count())

	matches := m.MatchEvent(func(filter.S) bool { return true })
	require.Len(t, matches, 1)
	assert.Equal(t, ConnID(1), matches[0].Conn)
	assert.Equal(t, "sub1", matches[0].SubID)

	m.Remove(1, "sub1")
	assert.Equal(t, 0, m.Count())
}

func TestManager_AddOverwritesSameSubID(t *testing.T) {
	m := New()
	require.NoError(t, m.Add(1, "sub1", filter.S{&filter.F{Kinds: []int{1}}}))
	require.NoError(t, m.Add(1, "sub1", filter.S{&filter.F{Kinds: []int{2}}}))
	assert.Equal(t, 1, m.Count())
}

func TestManager_PerConnectionLimit(t *testing.T) {
	m := New()
	for i := 0; i < MaxPerConnection; i++ {
		require.NoError(t, m.Add(1, string(rune('a'+i)), filter.S{&filter.F{}}))
	}
	err := m.Add(1, "one-too-many", filter.S{&filter.F{}})
	assert.ErrorIs(t, err, ErrConnectionFull)
}

func TestManager_ClampsOverlongFilterList(t *testing.T) {
	m := New()
	fs := make(filter.S, MaxFiltersPerSubscription+1)
	for i := range fs {
		fs[i] = &filter.F{Kinds: []int{i}}
	}
	require.NoError(t, m.Add(1, "sub1", fs))
	assert.Equal(t, 1, m.Count())
}

func TestManager_DeepCopiesFilters(t *testing.T) {
	m := New()
	f := &filter.F{Kinds: []int{1}}
	require.NoError(t, m.Add(1, "sub1", filter.S{f}))

	// Mutating the caller's filter after Add must not affect the slot.
	f.Kinds[0] = 99
	matched := m.MatchEvent(func(fs filter.S) bool {
		return len(fs) == 1 && fs[0].Kinds[0] == 1
	})
	assert.Len(t, matched, 1)
}

func TestManager_RemoveAll(t *testing.T) {
	m := New()
	require.NoError(t, m.Add(1, "a", filter.S{&filter.F{}}))
	require.NoError(t, m.Add(1, "b", filter.S{&filter.F{}}))
	require.NoError(t, m.Add(2, "c", filter.S{&filter.F{}}))
	m.RemoveAll(1)
	assert.Equal(t, 1, m.Count())
}
