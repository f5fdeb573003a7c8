package app

import (
	"encoding/json"
	"fmt"

	"lol.mleku.dev/log"

	"wisp.relay/pkg/encoders/envelopes/authenvelope"
)

// HandleAuth acknowledges a NIP-42 AUTH response without acting on it.
// The relay never issues challenges and grants nothing for
// authentication; the reply exists so a client that sends AUTH
// unprompted learns it is a no-op here rather than a protocol error.
func (l *Listener) HandleAuth(rest []json.RawMessage) error {
	if _, err := authenvelope.Parse(rest); err != nil {
		return fmt.Errorf("invalid AUTH: %w", err)
	}
	log.D.F("AUTH from %s acknowledged (not supported)", l.remote)
	return l.replyNotice("AUTH is not supported by this relay")
}
