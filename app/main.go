package app

import (
	"context"
	"fmt"
	"net/http"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"wisp.relay/app/config"
	"wisp.relay/pkg/storage"
)

// Run starts the relay's HTTP listener and returns a channel that closes
// when ctx is cancelled, so the caller can block on shutdown.
func Run(ctx context.Context, cfg *config.C, store *storage.Engine) (quit chan struct{}) {
	quit = make(chan struct{})
	go func() {
		<-ctx.Done()
		log.I.F("shutting down")
		close(quit)
	}()

	s := NewServer(ctx, cfg, store)

	addr := fmt.Sprintf("%s:%d", cfg.Listen, cfg.Port)
	log.I.F("starting listener on http://%s", addr)
	go func() {
		chk.E(http.ListenAndServe(addr, s))
	}()
	return
}
