package app

import (
	"encoding/json"
	"fmt"

	"lol.mleku.dev/log"

	"wisp.relay/pkg/encoders/envelopes/closeenvelope"
)

// HandleClose removes the named subscription for this connection. A
// CLOSE for a subscription that was never installed is not an error; the
// client's view and the relay's already agree.
func (l *Listener) HandleClose(rest []json.RawMessage) error {
	env, err := closeenvelope.Parse(rest)
	if err != nil {
		return fmt.Errorf("invalid CLOSE: %w", err)
	}
	if len(env.SubscriptionID) == 0 {
		return fmt.Errorf("CLOSE has no subscription id")
	}
	l.Subs.Remove(l.connID, env.SubscriptionID)
	l.Metrics.Subscriptions.Set(float64(l.Subs.Count()))
	log.D.F("CLOSE %s from %s", env.SubscriptionID, l.remote)
	return nil
}
