// Package relayinfo implements the NIP-11 relay information document: a
// thin ambient HTTP handler describing the relay's limits and supported
// NIPs, served alongside but not part of the core pipeline.
package relayinfo

import "encoding/json"

// Limits mirrors the subset of NIP-11's "limitation" object this relay
// enforces.
type Limits struct {
	MaxMessageLength  int `json:"max_message_length,omitempty"`
	MaxSubscriptions  int `json:"max_subscriptions,omitempty"`
	MaxFilters        int `json:"max_filters,omitempty"`
	MaxLimit          int `json:"max_limit,omitempty"`
	MaxEventTags      int `json:"max_event_tags,omitempty"`
	MaxContentLength  int `json:"max_content_length,omitempty"`
	MinPowDifficulty  int `json:"min_pow_difficulty,omitempty"`
	AuthRequired      bool `json:"auth_required"`
	PaymentRequired   bool `json:"payment_required"`
}

// Document is the NIP-11 relay information document.
type Document struct {
	Name          string   `json:"name,omitempty"`
	Description   string   `json:"description,omitempty"`
	Pubkey        string   `json:"pubkey,omitempty"`
	Contact       string   `json:"contact,omitempty"`
	SupportedNIPs []int    `json:"supported_nips"`
	Software      string   `json:"software,omitempty"`
	Version       string   `json:"version,omitempty"`
	Limitation    Limits   `json:"limitation"`
}

// SupportedNIPs lists every NIP this relay implements a wire-visible
// piece of: 1 (core protocol), 9 (deletion), 11 (this document), 20 (OK
// command results), 40 (expiration timestamp).
var SupportedNIPs = []int{1, 9, 11, 20, 40}

// New builds the relay information document for the given identity and
// enforced limits.
func New(name, description, software, version string, limits Limits) *Document {
	return &Document{
		Name:          name,
		Description:   description,
		SupportedNIPs: append([]int{}, SupportedNIPs...),
		Software:      software,
		Version:       version,
		Limitation:    limits,
	}
}

// MarshalJSON satisfies json.Marshaler explicitly so callers can rely on
// Document always producing the application/nostr+json body NIP-11
// requires without reaching into net/http themselves.
func (d *Document) MarshalJSON() ([]byte, error) {
	type alias Document
	return json.Marshal((*alias)(d))
}
