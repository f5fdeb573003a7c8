// Package eventenvelope implements the client->relay and relay->client
// EVENT envelope: ["EVENT", <event>] or ["EVENT", <subid>, <event>].
package eventenvelope

import (
	"encoding/json"
	"fmt"

	"wisp.relay/pkg/encoders/event"
)

// Submission is a client's ["EVENT", <event>] publish request.
type Submission struct {
	Event *event.E
}

// ParseSubmission parses the array elements following the "EVENT" label of
// a client submission.
func ParseSubmission(rest []json.RawMessage) (*Submission, error) {
	if len(rest) != 1 {
		return nil, fmt.Errorf("eventenvelope: want 1 element after label, got %d", len(rest))
	}
	ev := event.New()
	if err := json.Unmarshal(rest[0], ev); err != nil {
		return nil, fmt.Errorf("eventenvelope: %w", err)
	}
	return &Submission{Event: ev}, nil
}

// Result is a relay->client ["EVENT", <subid>, <event>] delivery.
type Result struct {
	SubscriptionID string
	Event          *event.E
}

// Marshal renders a Result to wire form.
func (r *Result) Marshal() ([]byte, error) {
	return json.Marshal([]any{"EVENT", r.SubscriptionID, r.Event})
}
