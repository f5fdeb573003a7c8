package app

import (
	"fmt"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/errorf"
	"lol.mleku.dev/log"

	"wisp.relay/pkg/encoders/envelopes"
)

// HandleMessage identifies the envelope label of a raw client message and
// dispatches to the matching handler. A message that does not parse as a
// labelled array draws the fixed parse-failure NOTICE; a handler error is
// reported back as a NOTICE with the error text. Either way the
// connection stays open.
func (l *Listener) HandleMessage(msg []byte) {
	log.D.C(func() string {
		return fmt.Sprintf("%s received message:\n%s", l.remote, msg)
	})

	label, arr, err := envelopes.Identify(msg)
	if err != nil {
		log.D.F("%s sent unparseable message: %v", l.remote, err)
		if err := l.replyNotice("error: failed to parse message"); chk.E(err) {
			return
		}
		return
	}
	rest := arr[1:]

	switch label {
	case envelopes.Event:
		err = l.HandleEvent(rest)
	case envelopes.Req:
		err = l.HandleReq(rest)
	case envelopes.Close:
		err = l.HandleClose(rest)
	case envelopes.Auth:
		err = l.HandleAuth(rest)
	case envelopes.Count:
		err = l.HandleCount(rest)
	default:
		err = errorf.E("unknown envelope type %s", label)
	}

	if err != nil {
		log.D.C(func() string {
			return fmt.Sprintf("notice->%s %s", l.remote, err)
		})
		if err := l.replyNotice(err.Error()); chk.E(err) {
			return
		}
	}
}
