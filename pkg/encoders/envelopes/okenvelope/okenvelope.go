// Package okenvelope implements the relay->client OK envelope:
// ["OK", <eventid>, <accepted>, <message>].
package okenvelope

import "encoding/json"

// T is an OK acknowledgement for a submitted event.
type T struct {
	EventID  string
	Accepted bool
	Message  string
}

// Marshal renders the envelope to wire form.
func (t *T) Marshal() ([]byte, error) {
	return json.Marshal([]any{"OK", t.EventID, t.Accepted, t.Message})
}
