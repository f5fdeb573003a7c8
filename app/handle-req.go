package app

import (
	"encoding/json"
	"fmt"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"wisp.relay/pkg/encoders/envelopes/eventenvelope"
	"wisp.relay/pkg/encoders/envelopes/reqenvelope"
	"wisp.relay/pkg/subscription"
)

// MaxSubIDLength bounds the subscription id a client may choose.
const MaxSubIDLength = 64

// HandleReq installs or replaces a subscription: admission-check the
// request, register the filters, replay matching stored events, and close
// the replay with an EOSE so the client knows live fan-out has begun.
func (l *Listener) HandleReq(rest []json.RawMessage) error {
	env, err := reqenvelope.Parse(rest)
	if err != nil {
		return fmt.Errorf("invalid REQ: %w", err)
	}

	if len(env.SubscriptionID) == 0 || len(env.SubscriptionID) > MaxSubIDLength {
		return l.replyClosed(env.SubscriptionID, "invalid: subscription id must be 1-64 characters")
	}
	if len(env.Filters) > subscription.MaxFiltersPerSubscription {
		return l.replyClosed(env.SubscriptionID, fmt.Sprintf(
			"invalid: a subscription carries at most %d filters", subscription.MaxFiltersPerSubscription))
	}

	if !l.ReqLimit.Allow(uint64(l.connID)) {
		return l.replyClosed(env.SubscriptionID, "blocked: rate limit exceeded")
	}

	if err := l.Subs.Add(l.connID, env.SubscriptionID, env.Filters); err != nil {
		log.D.F("REQ %s from %s refused: %v", env.SubscriptionID, l.remote, err)
		switch err {
		case subscription.ErrConnectionFull:
			return l.replyClosed(env.SubscriptionID, "blocked: too many subscriptions on this connection")
		default:
			return l.replyClosed(env.SubscriptionID, "error: could not register subscription")
		}
	}
	l.Metrics.Subscriptions.Set(float64(l.Subs.Count()))

	// Historical replay: everything stored that the filters match,
	// newest first, before any live broadcast for this subscription.
	events, err := l.Storage.Query(env.Filters)
	if err != nil {
		chk.E(err)
		return l.replyClosed(env.SubscriptionID, "error: could not query stored events")
	}
	for _, ev := range events {
		res := &eventenvelope.Result{SubscriptionID: env.SubscriptionID, Event: ev}
		b, err := res.Marshal()
		if chk.E(err) {
			continue
		}
		if _, err := l.Write(b); chk.E(err) {
			return nil
		}
	}
	log.D.F("REQ %s from %s: replayed %d stored events", env.SubscriptionID, l.remote, len(events))

	return l.replyEOSE(env.SubscriptionID)
}
