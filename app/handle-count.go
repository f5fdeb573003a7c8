package app

import (
	"encoding/json"
	"fmt"

	"lol.mleku.dev/log"

	"wisp.relay/pkg/encoders/envelopes/countenvelope"
)

// HandleCount parses a NIP-45 COUNT request and refuses it: counting is
// not implemented. The refusal goes out as a CLOSED for the request's
// subscription id so well-behaved clients stop waiting for a count.
func (l *Listener) HandleCount(rest []json.RawMessage) error {
	env, err := countenvelope.ParseRequest(rest)
	if err != nil {
		return fmt.Errorf("invalid COUNT: %w", err)
	}
	log.D.F("COUNT %s from %s refused (not supported)", env.SubscriptionID, l.remote)
	return l.replyClosed(env.SubscriptionID, "error: this relay does not count events")
}
