package app

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/atomic"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/errorf"
	"lol.mleku.dev/log"

	"wisp.relay/pkg/subscription"
)

// Listener holds the per-connection state the router and broadcaster
// need: the websocket itself, its connection identity, and its remote
// address for logging.
type Listener struct {
	*Server
	conn      *websocket.Conn
	ctx       context.Context
	connID    subscription.ConnID
	remote    string
	req       *http.Request
	startTime time.Time
	closing   atomic.Bool
}

// Ctx returns the listener's context.
func (l *Listener) Ctx() context.Context {
	return l.ctx
}

// Write sends a single text message to the client with a bounded
// deadline, independent of the connection's read-loop context so a slow
// write cannot be aborted by unrelated cancellation. Writes after the
// connection has begun closing are dropped silently; the close hook is
// already tearing everything down.
func (l *Listener) Write(p []byte) (n int, err error) {
	if l.closing.Load() {
		return 0, nil
	}
	if l.Config.MaxMessageBytes > 0 && len(p) > l.Config.MaxMessageBytes {
		return 0, errorf.E("refusing to send oversized frame of %d bytes to %s", len(p), l.remote)
	}
	writeCtx, cancel := context.WithTimeout(context.Background(), DefaultWriteWait)
	defer cancel()

	if err = l.conn.Write(writeCtx, websocket.MessageText, p); chk.E(err) {
		log.W.F("ws->%s write failed: %v", l.remote, err)
		return
	}
	n = len(p)
	return
}
