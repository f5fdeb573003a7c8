package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"wisp.relay/app"
	"wisp.relay/app/config"
	"wisp.relay/pkg/storage"
	"wisp.relay/pkg/version"
)

func main() {
	var err error
	var cfg *config.C
	if cfg, err = config.New(); chk.T(err) {
	}
	log.I.F("starting %s %s", cfg.AppName, version.Version)

	stopProfiler := startProfiler(cfg.Pprof)
	defer stopProfiler()

	ctx, cancel := context.WithCancel(context.Background())

	var store *storage.Engine
	if store, err = storage.Open(cfg.DataDir, cfg.DefaultTTL); chk.E(err) {
		os.Exit(1)
	}

	// Optional standalone health check server, separate from the relay
	// port so load balancers can probe it without speaking websocket.
	if cfg.HealthPort > 0 {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		healthSrv := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Listen, cfg.HealthPort),
			Handler: mux,
		}
		go func() {
			log.I.F("health check server listening on %s", healthSrv.Addr)
			if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.E.F("health server error: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancelShutdown := context.WithTimeout(
				context.Background(), 2*time.Second,
			)
			defer cancelShutdown()
			_ = healthSrv.Shutdown(shutdownCtx)
		}()
	}

	quit := app.Run(ctx, cfg, store)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case <-sigs:
		fmt.Printf("\r")
	case <-quit:
	}
	cancel()
	chk.E(store.Close())
}
