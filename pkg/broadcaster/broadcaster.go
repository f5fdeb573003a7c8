// Package broadcaster fans a newly-accepted event out to every matching
// subscription. It holds no state of its own: the subscription registry
// is the source of truth, and sends happen after its lock is released so
// one slow connection cannot stall the match scan.
package broadcaster

import (
	"lol.mleku.dev/log"

	"wisp.relay/pkg/encoders/event"
	"wisp.relay/pkg/encoders/envelopes/eventenvelope"
	"wisp.relay/pkg/encoders/filter"
	"wisp.relay/pkg/subscription"
)

// Registry is the subset of subscription.Manager the broadcaster needs.
type Registry interface {
	MatchEvent(matches func(filter.S) bool) []subscription.Match
}

// Sender delivers a raw message to one connection. Broadcast sends
// sequentially, but several broadcasts can run at once, so
// implementations must be safe for concurrent use.
type Sender interface {
	Send(conn subscription.ConnID, msg []byte) error
}

// Broadcast delivers ev to every subscription in reg whose filters match
// it, via send. A delivery failure to one connection is logged and does
// not prevent delivery to the rest.
func Broadcast(reg Registry, send Sender, ev *event.E) {
	matches := reg.MatchEvent(func(fs filter.S) bool {
		return fs.Matches(ev)
	})

	for _, m := range matches {
		result := &eventenvelope.Result{SubscriptionID: m.SubID, Event: ev}
		b, err := result.Marshal()
		if err != nil {
			log.E.F("broadcaster: marshal event for sub %q: %v", m.SubID, err)
			continue
		}
		if err := send.Send(m.Conn, b); err != nil {
			log.W.F("broadcaster: send to connection for sub %q failed: %v", m.SubID, err)
		}
	}
}
