package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
)

const (
	DefaultWriteWait      = 10 * time.Second
	DefaultPongWait       = 60 * time.Second
	DefaultPingWait       = DefaultPongWait / 2
	DefaultMaxMessageSize = 1 << 16
)

// HandleWebsocket upgrades an incoming HTTP request to a websocket
// connection, registers the resulting Listener, and runs its read loop
// until the connection closes. Messages are handled synchronously so a
// single connection's messages are processed in arrival order.
func (s *Server) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	remote := GetRemoteFromReq(r)

	if s.Config.MaxConnections > 0 && s.connCount() >= s.Config.MaxConnections {
		log.W.F("refusing connection from %s: connection limit reached", remote)
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	log.T.F("accepting websocket connection from %s", remote)
	LogProxyInfo(r, "ws-open")

	ctx, cancel := context.WithCancel(s.Ctx)
	defer cancel()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if chk.E(err) {
		return
	}
	maxMsg := int64(DefaultMaxMessageSize)
	if s.Config.MaxMessageBytes > 0 {
		maxMsg = int64(s.Config.MaxMessageBytes)
	}
	conn.SetReadLimit(maxMsg)
	defer conn.CloseNow()

	l := &Listener{
		Server:    s,
		conn:      conn,
		ctx:       ctx,
		connID:    s.nextConnID(),
		remote:    remote,
		req:       r,
		startTime: time.Now(),
	}
	s.registerConn(l.connID, l)
	s.Metrics.ConnectionsOpened.Inc()

	ticker := time.NewTicker(DefaultPingWait)
	go s.pinger(ctx, conn, ticker, cancel)

	// The close hook is the single source of truth for cleanup: every
	// resource keyed by this connection id is released here, before the
	// id could ever be reused.
	defer func() {
		log.D.F("closing websocket connection from %s", remote)
		l.closing.Store(true)
		cancel()
		ticker.Stop()
		s.Subs.RemoveAll(l.connID)
		s.Metrics.Subscriptions.Set(float64(s.Subs.Count()))
		s.EventLimit.Reset(uint64(l.connID))
		s.ReqLimit.Reset(uint64(l.connID))
		s.unregisterConn(l.connID)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, msg, err := conn.Read(ctx)
		if err != nil {
			if strings.Contains(err.Error(), "use of closed network connection") {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway,
				websocket.StatusNoStatusRcvd, websocket.StatusAbnormalClosure,
				websocket.StatusProtocolError:
			default:
				log.E.F("unexpected close from %s: %v", remote, err)
			}
			return
		}
		l.HandleMessage(msg)
	}
}

func (s *Server) pinger(ctx context.Context, conn *websocket.Conn, ticker *time.Ticker, cancel context.CancelFunc) {
	defer func() {
		cancel()
		ticker.Stop()
	}()
	for {
		select {
		case <-ticker.C:
			if err := conn.Ping(ctx); chk.E(err) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
