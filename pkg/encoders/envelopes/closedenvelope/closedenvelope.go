// Package closedenvelope implements the relay->client CLOSED envelope:
// ["CLOSED", <subid>, <message>].
package closedenvelope

import "encoding/json"

// T is a CLOSED notification, sent when the relay unilaterally ends a
// subscription.
type T struct {
	SubscriptionID string
	Message        string
}

// Marshal renders the envelope to wire form.
func (t *T) Marshal() ([]byte, error) {
	return json.Marshal([]any{"CLOSED", t.SubscriptionID, t.Message})
}
