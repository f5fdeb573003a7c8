package broadcaster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wisp.relay/pkg/encoders/event"
	"wisp.relay/pkg/encoders/filter"
	"wisp.relay/pkg/subscription"
)

type fakeRegistry struct {
	matches []subscription.Match
}

func (f *fakeRegistry) MatchEvent(matches func(filter.S) bool) []subscription.Match {
	return f.matches
}

type fakeSender struct {
	sent    map[subscription.ConnID]int
	failFor subscription.ConnID
}

func (f *fakeSender) Send(conn subscription.ConnID, msg []byte) error {
	if f.sent == nil {
		f.sent = map[subscription.ConnID]int{}
	}
	if conn == f.failFor {
		return errors.New("boom")
	}
	f.sent[conn]++
	return nil
}

func TestBroadcast_DeliversToAllMatches(t *testing.T) {
	ev := event.New()
	ev.ID = make([]byte, 32)
	ev.Pubkey = make([]byte, 32)
	ev.Kind = 1

	reg := &fakeRegistry{matches: []subscription.Match{
		{Conn: 1, SubID: "a"},
		{Conn: 2, SubID: "b"},
	}}
	sender := &fakeSender{}

	Broadcast(reg, sender, ev)
	require.Len(t, sender.sent, 2)
	assert.Equal(t, 1, sender.sent[1])
	assert.Equal(t, 1, sender.sent[2])
}

func TestBroadcast_OneFailureDoesNotStopOthers(t *testing.T) {
	ev := event.New()
	ev.ID = make([]byte, 32)
	ev.Pubkey = make([]byte, 32)

	reg := &fakeRegistry{matches: []subscription.Match{
		{Conn: 1, SubID: "a"},
		{Conn: 2, SubID: "b"},
	}}
	sender := &fakeSender{failFor: 1}

	Broadcast(reg, sender, ev)
	assert.Equal(t, 0, sender.sent[1])
	assert.Equal(t, 1, sender.sent[2])
}
