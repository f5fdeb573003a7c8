package event

import (
	"encoding/hex"
	"strconv"

	"wisp.relay/pkg/crypto"
	"wisp.relay/pkg/encoders/text"
)

// Serialize renders the event's canonical serialization per NIP-01:
// [0, pubkey, created_at, kind, tags, content], with no insignificant
// whitespace and strings escaped by text.NostrEscape. This, not the wire
// representation, is what the id hash is computed over, so the bytes are
// built directly rather than through encoding/json, whose HTML escaping
// would corrupt the preimage.
func (e *E) Serialize() []byte {
	b := make([]byte, 0, 256+len(e.Content))
	b = append(b, "[0,\""...)
	b = append(b, hex.EncodeToString(e.Pubkey)...)
	b = append(b, "\","...)
	b = strconv.AppendInt(b, e.CreatedAt, 10)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(e.Kind), 10)
	b = append(b, ",["...)
	if e.Tags != nil {
		for i, t := range e.Tags.T {
			if i > 0 {
				b = append(b, ',')
			}
			b = append(b, '[')
			for j, f := range t.Field {
				if j > 0 {
					b = append(b, ',')
				}
				b = text.AppendQuote(b, f, text.NostrEscape)
			}
			b = append(b, ']')
		}
	}
	b = append(b, "],"...)
	b = text.AppendQuote(b, e.Content, text.NostrEscape)
	b = append(b, ']')
	return b
}

// ComputeID returns the event id: the SHA-256 hash of the canonical
// serialization.
func (e *E) ComputeID() ([]byte, error) {
	sum := crypto.Sum256(e.Serialize())
	return sum[:], nil
}

// VerifyID reports whether e.ID matches the hash of its canonical
// serialization.
func (e *E) VerifyID() bool {
	id, err := e.ComputeID()
	if err != nil {
		return false
	}
	if len(id) != len(e.ID) {
		return false
	}
	for i := range id {
		if id[i] != e.ID[i] {
			return false
		}
	}
	return true
}

// VerifySignature reports whether e.Sig is a valid signature over e.ID by
// e.Pubkey, using v.
func (e *E) VerifySignature(v crypto.Verifier) bool {
	return v.Verify(e.Pubkey, e.ID, e.Sig)
}
