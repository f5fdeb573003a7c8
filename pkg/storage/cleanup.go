package storage

import (
	"context"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"lol.mleku.dev/log"
)

// cleanupLoop wakes once a second so shutdown stays responsive, sweeps
// expired entries every cleanupSweepWakes wakes, and compacts the index
// (plus a badger value-log GC) every compactEverySweeps sweeps.
func (e *Engine) cleanupLoop(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(cleanupWakeInterval)
	defer ticker.Stop()

	wakes := 0
	sweeps := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			wakes++
			if wakes < cleanupSweepWakes {
				continue
			}
			wakes = 0
			sweeps++

			if n := e.PurgeExpired(time.Now()); n > 0 {
				log.I.F("storage: purged %d expired events", n)
			}

			if sweeps >= compactEverySweeps {
				sweeps = 0
				if n := e.Compact(); n > 0 {
					log.I.F("storage: compacted %d tombstones", n)
				}
				if err := e.db.RunValueLogGC(0.5); err != nil && err != badger.ErrNoRewrite {
					log.D.F("storage: value log gc: %v", err)
				}
			}
		}
	}
}
