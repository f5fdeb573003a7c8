package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test vector 0 from the BIP-340 reference test vectors.
const (
	vec0Pubkey = "F9308A019258C31049344F85F89D5229B531C845836F99B08601F113BCE036F9"
	vec0Msg    = "0000000000000000000000000000000000000000000000000000000000000000"
	vec0Sig    = "E907831F80848D1069A5371B402410364BDF1C5F8307B0084C55F1CE2DCA8215" +
		"25F66A4A85EA8B71E482A74F382D2CE5EBEEE8FDB2172F477DF4900D310536C0"
)

func TestSchnorrVerifier_ReferenceVector(t *testing.T) {
	pub, err := hex.DecodeString(vec0Pubkey)
	require.NoError(t, err)
	msg, err := hex.DecodeString(vec0Msg)
	require.NoError(t, err)
	sig, err := hex.DecodeString(vec0Sig)
	require.NoError(t, err)

	v := SchnorrVerifier{}
	assert.True(t, v.Verify(pub, msg, sig))
}

func TestSchnorrVerifier_RejectsWrongLengths(t *testing.T) {
	v := SchnorrVerifier{}
	assert.False(t, v.Verify(nil, nil, nil))
	assert.False(t, v.Verify(make([]byte, 31), make([]byte, 32), make([]byte, 64)))
	assert.False(t, v.Verify(make([]byte, 32), make([]byte, 32), make([]byte, 63)))
}

func TestSchnorrVerifier_RejectsTamperedSignature(t *testing.T) {
	pub, err := hex.DecodeString(vec0Pubkey)
	require.NoError(t, err)
	msg := make([]byte, 32)
	sig, err := hex.DecodeString(vec0Sig)
	require.NoError(t, err)
	sig[0] ^= 0xFF

	v := SchnorrVerifier{}
	assert.False(t, v.Verify(pub, msg, sig))
}
