// Package eoseenvelope implements the relay->client EOSE envelope:
// ["EOSE", <subid>], marking the end of stored-event replay for a
// subscription.
package eoseenvelope

import "encoding/json"

// T is an end-of-stored-events marker.
type T struct {
	SubscriptionID string
}

// Marshal renders the envelope to wire form.
func (t *T) Marshal() ([]byte, error) {
	return json.Marshal([]any{"EOSE", t.SubscriptionID})
}
