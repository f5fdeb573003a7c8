// Package event implements the nostr event: the relay's atomic unit of
// storage and validation.
package event

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"wisp.relay/pkg/encoders/kind"
	"wisp.relay/pkg/encoders/tag"
)

// E is a single nostr event, NIP-01 §Events.
type E struct {
	ID        []byte   // 32 bytes, hex-encoded on the wire
	Pubkey    []byte   // 32 bytes, hex-encoded on the wire
	CreatedAt int64    // unix seconds
	Kind      kind.K
	Tags      *tag.S
	Content   string
	Sig       []byte // 64 bytes, hex-encoded on the wire
}

// New returns an empty event with an initialized, empty tag list.
func New() *E {
	return &E{Tags: &tag.S{}}
}

// wireEvent mirrors the JSON wire shape of an event: hex strings for the
// binary fields, everything else as-is.
type wireEvent struct {
	ID        string   `json:"id"`
	Pubkey    string   `json:"pubkey"`
	CreatedAt int64    `json:"created_at"`
	Kind      uint16   `json:"kind"`
	Tags      *tag.S   `json:"tags"`
	Content   string   `json:"content"`
	Sig       string   `json:"sig"`
}

// MarshalJSON renders the event in NIP-01 wire form.
func (e *E) MarshalJSON() ([]byte, error) {
	tags := e.Tags
	if tags == nil {
		tags = &tag.S{}
	}
	w := wireEvent{
		ID:        hex.EncodeToString(e.ID),
		Pubkey:    hex.EncodeToString(e.Pubkey),
		CreatedAt: e.CreatedAt,
		Kind:      uint16(e.Kind),
		Tags:      tags,
		Content:   e.Content,
		Sig:       hex.EncodeToString(e.Sig),
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses an event from NIP-01 wire form.
func (e *E) UnmarshalJSON(b []byte) error {
	var w wireEvent
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("event: invalid json: %w", err)
	}
	id, err := hex.DecodeString(w.ID)
	if err != nil {
		return fmt.Errorf("event: invalid id: %w", err)
	}
	pk, err := hex.DecodeString(w.Pubkey)
	if err != nil {
		return fmt.Errorf("event: invalid pubkey: %w", err)
	}
	sig, err := hex.DecodeString(w.Sig)
	if err != nil {
		return fmt.Errorf("event: invalid sig: %w", err)
	}
	e.ID = id
	e.Pubkey = pk
	e.CreatedAt = w.CreatedAt
	e.Kind = kind.K(w.Kind)
	if w.Tags != nil {
		e.Tags = w.Tags
	} else {
		e.Tags = &tag.S{}
	}
	e.Content = w.Content
	e.Sig = sig
	return nil
}

// IDHex returns the event id as a lowercase hex string.
func (e *E) IDHex() string { return hex.EncodeToString(e.ID) }

// PubkeyHex returns the event's author pubkey as a lowercase hex string.
func (e *E) PubkeyHex() string { return hex.EncodeToString(e.Pubkey) }

// DTag returns the value of the event's "d" tag, used for
// parameterized-replaceable addressing, or "" if none is present.
func (e *E) DTag() string {
	if e.Tags == nil {
		return ""
	}
	if t := e.Tags.GetFirst("d"); t != nil {
		return t.Value()
	}
	return ""
}

// ExpirationAt returns the event's NIP-40 expiration unix timestamp and
// whether it has one.
func (e *E) ExpirationAt() (int64, bool) {
	if e.Tags == nil {
		return 0, false
	}
	t := e.Tags.GetFirst("expiration")
	if t == nil {
		return 0, false
	}
	var ts int64
	if _, err := fmt.Sscanf(t.Value(), "%d", &ts); err != nil {
		return 0, false
	}
	return ts, true
}
