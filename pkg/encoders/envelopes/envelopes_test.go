package envelopes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentify_ReqEnvelope(t *testing.T) {
	label, rest, err := Identify([]byte(`["REQ", "sub1", {"kinds":[1]}]`))
	require.NoError(t, err)
	assert.Equal(t, Req, label)
	assert.Len(t, rest, 3)
}

func TestIdentify_RejectsEmptyArray(t *testing.T) {
	_, _, err := Identify([]byte(`[]`))
	assert.Error(t, err)
}

func TestIdentify_RejectsNonArray(t *testing.T) {
	_, _, err := Identify([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}
