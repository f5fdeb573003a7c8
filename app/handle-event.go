package app

import (
	"encoding/json"
	"fmt"
	"time"

	"lol.mleku.dev/log"

	"wisp.relay/pkg/broadcaster"
	"wisp.relay/pkg/deletion"
	"wisp.relay/pkg/encoders/envelopes/eventenvelope"
	"wisp.relay/pkg/reason"
)

// HandleEvent processes a client EVENT submission: rate limit, validate,
// store, acknowledge with OK, apply kind-5 deletion semantics, and
// broadcast to matching subscriptions.
func (l *Listener) HandleEvent(rest []json.RawMessage) error {
	if !l.EventLimit.Allow(uint64(l.connID)) {
		return l.replyOK("", false, reason.Blocked.Message("rate limit exceeded"))
	}

	sub, err := eventenvelope.ParseSubmission(rest)
	if err != nil {
		return fmt.Errorf("invalid EVENT: %w", err)
	}
	ev := sub.Event

	if l.Config.MaxEventTags > 0 && ev.Tags.Len() > l.Config.MaxEventTags {
		l.Metrics.EventsRejected.WithLabelValues(string(reason.Invalid)).Inc()
		return l.replyOK(ev.IDHex(), false, reason.Invalid.Message("too many tags"))
	}

	r, detail := l.Validator.Validate(ev, time.Now())
	if r != reason.None {
		l.Metrics.EventsRejected.WithLabelValues(string(r)).Inc()
		return l.replyOK(ev.IDHex(), r.Ok(), r.Message(detail))
	}

	saveReason, saveDetail := l.Storage.Save(ev)
	if !saveReason.Ok() {
		l.Metrics.EventsRejected.WithLabelValues(string(saveReason)).Inc()
		return l.replyOK(ev.IDHex(), false, saveReason.Message(saveDetail))
	}

	if err := l.replyOK(ev.IDHex(), true, saveReason.Message(saveDetail)); err != nil {
		log.W.F("ok->%s write failed: %v", l.remote, err)
	}

	if saveReason == reason.Duplicate {
		// Idempotent accept: the event was already processed and
		// broadcast when it first arrived.
		return nil
	}
	l.Metrics.EventsAccepted.Inc()

	if ev.Kind.IsDeletion() {
		res := deletion.Process(ev, l.Storage)
		log.D.F("deletion request %s: by-id=%d by-address=%d by-kind=%d",
			ev.IDHex(), res.ByID, res.ByAddress, res.ByKind)
	}

	broadcaster.Broadcast(l.Subs, l.Server, ev)

	return nil
}
