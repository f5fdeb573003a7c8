package app

import (
	"lol.mleku.dev/chk"

	"wisp.relay/pkg/encoders/envelopes/closedenvelope"
	"wisp.relay/pkg/encoders/envelopes/eoseenvelope"
	"wisp.relay/pkg/encoders/envelopes/noticeenvelope"
	"wisp.relay/pkg/encoders/envelopes/okenvelope"
)

// replyOK acknowledges an EVENT submission. The message carries one of
// the machine-readable prefixes from pkg/reason so clients can branch on
// the rejection class without parsing free text.
func (l *Listener) replyOK(eventID string, accepted bool, message string) error {
	b, err := (&okenvelope.T{EventID: eventID, Accepted: accepted, Message: message}).Marshal()
	if chk.E(err) {
		return err
	}
	_, err = l.Write(b)
	return err
}

// replyNotice sends a human-readable NOTICE; the connection stays open.
func (l *Listener) replyNotice(message string) error {
	b, err := (&noticeenvelope.T{Message: message}).Marshal()
	if chk.E(err) {
		return err
	}
	_, err = l.Write(b)
	return err
}

// replyClosed tells the client a subscription was refused or ended by
// the relay.
func (l *Listener) replyClosed(subID, message string) error {
	b, err := (&closedenvelope.T{SubscriptionID: subID, Message: message}).Marshal()
	if chk.E(err) {
		return err
	}
	_, err = l.Write(b)
	return err
}

// replyEOSE marks the end of stored-event replay for a subscription.
func (l *Listener) replyEOSE(subID string) error {
	b, err := (&eoseenvelope.T{SubscriptionID: subID}).Marshal()
	if chk.E(err) {
		return err
	}
	_, err = l.Write(b)
	return err
}
