package storage

import (
	"time"

	"lol.mleku.dev/log"
)

// PurgeExpired tombstones every live entry whose expires_at has passed
// and flushes the index if anything was purged. Slots are reclaimed by
// the next Compact.
func (e *Engine) PurgeExpired(now time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	nowU := uint32(now.Unix())
	n := 0
	for i := range e.entries {
		if e.entries[i].deleted() {
			continue
		}
		if e.entries[i].expiresAt == 0 || e.entries[i].expiresAt > nowU {
			continue
		}
		e.tombstoneLocked(i)
		n++
	}
	if n > 0 {
		if err := e.flushLocked(); err != nil {
			log.W.F("storage: persist after expiration purge failed: %v", err)
		}
	}
	return n
}
