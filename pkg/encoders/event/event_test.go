package event

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wisp.relay/pkg/encoders/tag"
)

func sampleEvent() *E {
	e := New()
	e.Pubkey = make([]byte, 32)
	e.Pubkey[0] = 0xAB
	e.CreatedAt = 1700000000
	e.Kind = 1
	e.Tags.Append(tag.New("e", "deadbeef"))
	e.Content = "hello"
	return e
}

func TestEvent_ComputeIDIsDeterministic(t *testing.T) {
	e := sampleEvent()
	id1, err := e.ComputeID()
	require.NoError(t, err)
	id2, err := e.ComputeID()
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 32)
}

func TestEvent_VerifyIDDetectsTamper(t *testing.T) {
	e := sampleEvent()
	id, err := e.ComputeID()
	require.NoError(t, err)
	e.ID = id
	assert.True(t, e.VerifyID())

	e.Content = "tampered"
	assert.False(t, e.VerifyID())
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	e := sampleEvent()
	id, err := e.ComputeID()
	require.NoError(t, err)
	e.ID = id
	e.Sig = make([]byte, 64)

	b, err := json.Marshal(e)
	require.NoError(t, err)

	var out E
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, e.ID, out.ID)
	assert.Equal(t, e.Pubkey, out.Pubkey)
	assert.Equal(t, e.CreatedAt, out.CreatedAt)
	assert.Equal(t, e.Kind, out.Kind)
	assert.Equal(t, e.Content, out.Content)
	assert.Equal(t, "deadbeef", out.Tags.GetFirst("e").Value())
}

func TestEvent_SerializeDoesNotHTMLEscape(t *testing.T) {
	e := New()
	e.Pubkey = make([]byte, 32)
	for i := range e.Pubkey {
		e.Pubkey[i] = 0xAB
	}
	e.CreatedAt = 1700000000
	e.Kind = 1
	e.Tags.Append(tag.New("t", "a&b<c>"))
	e.Tags.Append(tag.New("u", "line\nbreak\"q\""))
	e.Content = `<b>&amp; "quoted" \ slash</b>`

	want := `[0,"abababababababababababababababababababababababababababababababab",` +
		`1700000000,1,[["t","a&b<c>"],["u","line\nbreak\"q\""]],` +
		`"<b>&amp; \"quoted\" \\ slash</b>"]`
	assert.Equal(t, want, string(e.Serialize()))

	// Independently computed SHA-256 of the canonical bytes above; any
	// &-style escaping would change it.
	id, err := e.ComputeID()
	require.NoError(t, err)
	assert.Equal(t, "57affb23afa50a28eedde7293043318218dc6a37784276bb5155812fa76c0fbd",
		hex.EncodeToString(id))
}

func TestEvent_DTagAndExpiration(t *testing.T) {
	e := sampleEvent()
	e.Tags.Append(tag.New("d", "my-article"))
	e.Tags.Append(tag.New("expiration", "1700003600"))
	assert.Equal(t, "my-article", e.DTag())
	ts, ok := e.ExpirationAt()
	assert.True(t, ok)
	assert.Equal(t, int64(1700003600), ts)
}
