package tag

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTag_KeyValueRelay(t *testing.T) {
	tg := New("e", "abc123", "wss://relay.example")
	assert.Equal(t, "e", tg.Key())
	assert.Equal(t, "abc123", tg.Value())
	assert.Equal(t, "wss://relay.example", tg.Relay())
	assert.Equal(t, "", tg.At(5))
}

func TestTag_MarshalUnmarshalRoundTrip(t *testing.T) {
	tg := New("p", "deadbeef")
	b, err := json.Marshal(tg)
	require.NoError(t, err)
	assert.JSONEq(t, `["p","deadbeef"]`, string(b))

	var out T
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, tg.Equal(&out))
}

func TestTags_GetFirstGetAll(t *testing.T) {
	s := NewS(New("e", "1"), New("p", "a"), New("e", "2"))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "1", s.GetFirst("e").Value())
	all := s.GetAll("e")
	require.Len(t, all, 2)
	assert.Equal(t, "2", all[1].Value())
	assert.Nil(t, s.GetFirst("x"))
}

func TestTags_MarshalEmpty(t *testing.T) {
	var s S
	b, err := json.Marshal(&s)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}
