package storage

import (
	"time"

	"lol.mleku.dev/log"

	"wisp.relay/pkg/encoders/event"
	"wisp.relay/pkg/reason"
	"wisp.relay/pkg/utils"
)

// Save persists ev, applying the duplicate, ephemeral, and
// replaceable/addressable supersession rules. It returns reason.None on a
// fresh accept, reason.Duplicate on an idempotent re-submission of an
// already-stored event, or reason.Error if the event cannot be stored.
//
// The index is flushed to badger only every flushEverySaves-th successful
// save; a crash between flushes loses the unflushed tail.
func (e *Engine) Save(ev *event.E) (reason.Prefix, string) {
	if ev.Kind.IsEphemeral() {
		// Ephemeral events are delivered live but never persisted.
		return reason.None, ""
	}

	var id [32]byte
	copy(id[:], ev.ID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.findLiveByID(id); ok {
		return reason.Duplicate, "event already stored"
	}

	switch classOf(ev.Kind) {
	case "replaceable":
		e.supersedeReplaceable(ev)
	case "addressable":
		e.supersedeAddressable(ev)
	}

	if len(e.entries) == MaxEvents {
		// Reclaim tombstone slots before giving up.
		e.compactLocked()
	}
	if len(e.entries) == MaxEvents {
		return reason.Error, "could not save event"
	}

	fileIdx := e.nextFile
	e.nextFile++

	if err := e.writeBody(id, fileIdx, ev); err != nil {
		log.E.F("storage: write event body: %v", err)
		return reason.Error, "could not save event"
	}

	var pkPrefix [4]byte
	copy(pkPrefix[:], ev.Pubkey)

	// expires_at = min(created_at + default_ttl, expiration tag); 0 never.
	expiresAt := uint32(0)
	if e.defaultTTL > 0 {
		expiresAt = uint32(ev.CreatedAt + int64(e.defaultTTL/time.Second))
	}
	if ts, ok := ev.ExpirationAt(); ok && ts > 0 {
		if expiresAt == 0 || uint32(ts) < expiresAt {
			expiresAt = uint32(ts)
		}
	}

	e.entries = append(e.entries, indexEntry{
		eventID:      id,
		createdAt:    uint32(ev.CreatedAt),
		expiresAt:    expiresAt,
		kind:         uint16(ev.Kind),
		pubkeyPrefix: pkPrefix,
		fileIndex:    fileIdx,
	})

	e.saves++
	if e.saves >= flushEverySaves {
		e.saves = 0
		if err := e.flushLocked(); err != nil {
			log.W.F("storage: persist index chunks failed: %v", err)
		}
	}

	return reason.None, ""
}

// supersedeReplaceable tombstones every live entry sharing ev's
// (pubkey, kind) that is not newer than ev. Last write wins; an existing
// newer entry is left in place and both events remain stored.
func (e *Engine) supersedeReplaceable(ev *event.E) {
	for i := range e.entries {
		if e.entries[i].deleted() {
			continue
		}
		if e.entries[i].kind != uint16(ev.Kind) {
			continue
		}
		if !prefixEqual(e.entries[i].pubkeyPrefix, ev.Pubkey) {
			continue
		}
		if e.entries[i].createdAt > uint32(ev.CreatedAt) {
			continue
		}
		existing, err := e.readBody(e.entries[i].eventID, e.entries[i].fileIndex)
		if err != nil || !utils.FastEqual(existing.Pubkey, ev.Pubkey) {
			continue
		}
		e.tombstoneLocked(i)
	}
}

// supersedeAddressable is supersedeReplaceable's counterpart for
// parameterized-replaceable kinds, additionally keyed by the "d" tag.
// Because the fixed index entry carries no tag data, the d-tag comparison
// re-reads each candidate's body; this is acceptable given the index's
// small fixed size and the Non-goal of secondary indexes.
func (e *Engine) supersedeAddressable(ev *event.E) {
	d := ev.DTag()
	for i := range e.entries {
		if e.entries[i].deleted() {
			continue
		}
		if e.entries[i].kind != uint16(ev.Kind) {
			continue
		}
		if !prefixEqual(e.entries[i].pubkeyPrefix, ev.Pubkey) {
			continue
		}
		existing, err := e.readBody(e.entries[i].eventID, e.entries[i].fileIndex)
		if err != nil || !utils.FastEqual(existing.Pubkey, ev.Pubkey) || existing.DTag() != d {
			continue
		}
		if e.entries[i].createdAt > uint32(ev.CreatedAt) {
			continue
		}
		e.tombstoneLocked(i)
	}
}
