package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"lol.mleku.dev/log"

	"wisp.relay/app/config"
	"wisp.relay/pkg/broadcaster"
	"wisp.relay/pkg/crypto"
	"wisp.relay/pkg/ratelimit"
	"wisp.relay/pkg/relayinfo"
	"wisp.relay/pkg/storage"
	"wisp.relay/pkg/subscription"
	"wisp.relay/pkg/validator"
	"wisp.relay/pkg/version"
)

// Metrics holds the relay's ambient prometheus counters. They observe
// connection and pipeline activity but are not part of the core pipeline
// itself.
type Metrics struct {
	ConnectionsOpened prometheus.Counter
	ConnectionsActive prometheus.Gauge
	EventsAccepted    prometheus.Counter
	EventsRejected    *prometheus.CounterVec
	Subscriptions     prometheus.Gauge
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	auto := promauto.With(reg)
	return &Metrics{
		ConnectionsOpened: auto.NewCounter(prometheus.CounterOpts{
			Name: "wisp_connections_opened_total",
			Help: "Total websocket connections accepted.",
		}),
		ConnectionsActive: auto.NewGauge(prometheus.GaugeOpts{
			Name: "wisp_connections_active",
			Help: "Currently open websocket connections.",
		}),
		EventsAccepted: auto.NewCounter(prometheus.CounterOpts{
			Name: "wisp_events_accepted_total",
			Help: "Total events accepted, ephemeral events included.",
		}),
		EventsRejected: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "wisp_events_rejected_total",
			Help: "Total events rejected, by reason prefix.",
		}, []string{"reason"}),
		Subscriptions: auto.NewGauge(prometheus.GaugeOpts{
			Name: "wisp_subscriptions_active",
			Help: "Currently registered subscriptions.",
		}),
	}
}

// Server wires the ambient HTTP surface and the core pipeline components
// together, and tracks live connections so the broadcaster can reach any
// of them by id.
type Server struct {
	Ctx     context.Context
	Config  *config.C
	Storage *storage.Engine

	Validator  *validator.V
	Subs       *subscription.Manager
	EventLimit *ratelimit.Limiter
	ReqLimit   *ratelimit.Limiter
	Metrics    *Metrics

	registry *prometheus.Registry
	mux      *chi.Mux

	connSeq uint64
	connMu  sync.Mutex
	conns   map[subscription.ConnID]*Listener
}

// NewServer constructs a Server from its config and storage engine, and
// wires the validator, subscription registry, and rate limiters with the
// thresholds config names.
func NewServer(ctx context.Context, cfg *config.C, store *storage.Engine) *Server {
	reg := prometheus.NewRegistry()
	eventsPerMinute := cfg.EventsPerMinute
	if eventsPerMinute <= 0 {
		eventsPerMinute = ratelimit.DefaultEventsPerMinute
	}
	reqsPerMinute := cfg.RequestsPerMinute
	if reqsPerMinute <= 0 {
		reqsPerMinute = ratelimit.DefaultRequestsPerMinute
	}
	s := &Server{
		Ctx:     ctx,
		Config:  cfg,
		Storage: store,
		Validator: validator.New(validator.Config{
			MaxFutureDrift:   cfg.MaxFutureDrift,
			MaxAge:           cfg.MaxEventAge,
			MinPowDifficulty: cfg.MinPowDifficulty,
		}, crypto.SchnorrVerifier{}),
		Subs:       subscription.New(),
		EventLimit: ratelimit.New(int64(eventsPerMinute), time.Minute),
		ReqLimit:   ratelimit.New(int64(reqsPerMinute), time.Minute),
		Metrics:    newMetrics(reg),
		registry:   reg,
		conns:      make(map[subscription.ConnID]*Listener),
	}
	s.mux = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	})
	r.Use(c.Handler)

	r.Get("/", s.HandleRoot)
	r.Get("/healthz", s.HandleHealthz)
	r.Get("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP)
	return r
}

// ServeHTTP makes Server usable directly as a net/http handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// HandleRoot serves the NIP-11 relay information document when the
// client asks for application/nostr+json, and upgrades to a websocket
// connection otherwise.
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Accept") == "application/nostr+json" {
		s.HandleRelayInfo(w, r)
		return
	}
	s.HandleWebsocket(w, r)
}

// HandleRelayInfo serves the NIP-11 relay information document.
func (s *Server) HandleRelayInfo(w http.ResponseWriter, r *http.Request) {
	doc := relayinfo.New(
		s.Config.AppName,
		s.Config.Description,
		version.Software,
		version.Version,
		relayinfo.Limits{
			MaxMessageLength: s.Config.MaxMessageBytes,
			MaxSubscriptions: subscription.MaxPerConnection,
			MaxFilters:       subscription.MaxFiltersPerSubscription,
			MaxLimit:         storage.MaxQueryLimit,
			MaxEventTags:     s.Config.MaxEventTags,
			MaxContentLength: s.Config.MaxContentBytes,
			MinPowDifficulty: s.Config.MinPowDifficulty,
		},
	)
	doc.Contact = s.Config.Contact
	w.Header().Set("Content-Type", "application/nostr+json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		log.E.F("relayinfo: encode failed: %v", err)
	}
}

// HandleHealthz is a liveness probe: it reports ok once the storage
// engine is reachable.
func (s *Server) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "ok %d events\n", s.Storage.Count())
}

func (s *Server) connCount() int {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return len(s.conns)
}

func (s *Server) nextConnID() subscription.ConnID {
	return subscription.ConnID(atomic.AddUint64(&s.connSeq, 1))
}

func (s *Server) registerConn(id subscription.ConnID, l *Listener) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.conns[id] = l
	s.Metrics.ConnectionsActive.Inc()
}

func (s *Server) unregisterConn(id subscription.ConnID) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	delete(s.conns, id)
	s.Metrics.ConnectionsActive.Dec()
}

// Send implements broadcaster.Sender by looking up the live connection
// for id and writing to it.
func (s *Server) Send(id subscription.ConnID, msg []byte) error {
	s.connMu.Lock()
	l, ok := s.conns[id]
	s.connMu.Unlock()
	if !ok {
		return fmt.Errorf("app: connection %d is no longer open", id)
	}
	_, err := l.Write(msg)
	return err
}

var _ broadcaster.Sender = (*Server)(nil)
