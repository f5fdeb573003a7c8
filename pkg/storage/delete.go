package storage

import (
	"lol.mleku.dev/log"

	"wisp.relay/pkg/utils"
)

// DeleteByID tombstones the live entry with the given id if its author
// matches pubkey, per NIP-09: only the event's own author may delete it.
// The index's 4-byte author prefix is not proof enough, so the body is
// loaded and the full pubkey compared. Returns true if an entry was
// tombstoned.
func (e *Engine) DeleteByID(id [32]byte, pubkey []byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.findLiveByID(id)
	if !ok {
		return false
	}
	if !prefixEqual(e.entries[i].pubkeyPrefix, pubkey) {
		return false
	}
	ev, err := e.readBody(e.entries[i].eventID, e.entries[i].fileIndex)
	if err != nil || !utils.FastEqual(ev.Pubkey, pubkey) {
		return false
	}
	e.tombstoneLocked(i)
	if err := e.flushLocked(); err != nil {
		log.W.F("storage: persist after delete failed: %v", err)
	}
	return true
}

// DeleteByAddress tombstones every live entry authored by pubkey matching
// (kind, dTag) with created_at not after until, per NIP-09's "a" tag
// addressable-deletion form. Returns the number of entries tombstoned.
func (e *Engine) DeleteByAddress(pubkey []byte, k uint16, dTag string, until int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for i := range e.entries {
		if e.entries[i].deleted() {
			continue
		}
		if e.entries[i].kind != k || !prefixEqual(e.entries[i].pubkeyPrefix, pubkey) {
			continue
		}
		if int64(e.entries[i].createdAt) > until {
			continue
		}
		existing, err := e.readBody(e.entries[i].eventID, e.entries[i].fileIndex)
		if err != nil || !utils.FastEqual(existing.Pubkey, pubkey) || existing.DTag() != dTag {
			continue
		}
		e.tombstoneLocked(i)
		n++
	}
	if n > 0 {
		if err := e.flushLocked(); err != nil {
			log.W.F("storage: persist after address delete failed: %v", err)
		}
	}
	return n
}

// DeleteByKind tombstones every live entry authored by pubkey of the
// given kind with created_at not after until, per NIP-09's "k" tag form.
func (e *Engine) DeleteByKind(pubkey []byte, k uint16, until int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for i := range e.entries {
		if e.entries[i].deleted() {
			continue
		}
		if e.entries[i].kind != k || !prefixEqual(e.entries[i].pubkeyPrefix, pubkey) {
			continue
		}
		if int64(e.entries[i].createdAt) > until {
			continue
		}
		existing, err := e.readBody(e.entries[i].eventID, e.entries[i].fileIndex)
		if err != nil || !utils.FastEqual(existing.Pubkey, pubkey) {
			continue
		}
		e.tombstoneLocked(i)
		n++
	}
	if n > 0 {
		if err := e.flushLocked(); err != nil {
			log.W.F("storage: persist after kind delete failed: %v", err)
		}
	}
	return n
}
