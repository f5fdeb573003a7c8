// Package authenvelope implements the NIP-42 AUTH envelope shape. The
// relay never issues a challenge or enforces authentication (AUTH
// challenge/response is out of scope); this package exists only so a
// client that sends ["AUTH", <event>] unprompted gets a well-formed,
// harmless acknowledgement instead of a parse error.
package authenvelope

import (
	"encoding/json"
	"fmt"
)

// Challenge is the relay->client ["AUTH", <challenge>] message shape. The
// relay does not send these; kept for completeness of the envelope set.
type Challenge struct {
	Challenge string
}

// Marshal renders the challenge to wire form.
func (c *Challenge) Marshal() ([]byte, error) {
	return json.Marshal([]any{"AUTH", c.Challenge})
}

// ClientAuth is a parsed client->relay ["AUTH", <event>] response. The
// relay does not validate it.
type ClientAuth struct {
	Raw json.RawMessage
}

// Parse parses the array elements following the "AUTH" label.
func Parse(rest []json.RawMessage) (*ClientAuth, error) {
	if len(rest) != 1 {
		return nil, fmt.Errorf("authenvelope: want 1 element after label, got %d", len(rest))
	}
	return &ClientAuth{Raw: rest[0]}, nil
}
