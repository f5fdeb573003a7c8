// Package noticeenvelope implements the relay->client NOTICE envelope:
// ["NOTICE", <message>], used for human-readable, non-machine-parsed
// warnings and informational messages.
package noticeenvelope

import "encoding/json"

// T is a NOTICE message.
type T struct {
	Message string
}

// Marshal renders the envelope to wire form.
func (t *T) Marshal() ([]byte, error) {
	return json.Marshal([]any{"NOTICE", t.Message})
}
