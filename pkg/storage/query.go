package storage

import (
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"wisp.relay/pkg/encoders/event"
	"wisp.relay/pkg/encoders/filter"
)

// Query serves a REQ's filter list: each filter scans the index in
// reverse insertion order (newest entries first), skipping tombstones and
// lazily tombstoning entries whose expires_at has passed, and collects up
// to its limit (capped at MaxQueryLimit) of fully-matching events. Results
// are deduplicated by event id across the filter list and returned
// newest-first by created_at.
func (e *Engine) Query(filters filter.S) ([]*event.E, error) {
	now := uint32(time.Now().Unix())

	e.mu.Lock()
	defer e.mu.Unlock()

	expired := 0
	seen := make(map[[32]byte]struct{})
	var out []*event.E

	for _, f := range filters {
		limit := MaxQueryLimit
		if f != nil && f.Limit != nil && *f.Limit < limit {
			limit = *f.Limit
		}
		matched := 0
		for i := len(e.entries) - 1; i >= 0 && matched < limit; i-- {
			ent := &e.entries[i]
			if ent.deleted() {
				continue
			}
			if ent.expiresAt > 0 && ent.expiresAt < now {
				e.tombstoneLocked(i)
				expired++
				continue
			}
			if !indexMatch(ent, f) {
				continue
			}
			ev, err := e.readBody(ent.eventID, ent.fileIndex)
			if err != nil {
				chk.E(err)
				continue
			}
			// The index test is a coarse prefix check; re-run the full
			// filter against the loaded event before counting it.
			if !f.Matches(ev) {
				continue
			}
			matched++
			if _, dup := seen[ent.eventID]; dup {
				continue
			}
			seen[ent.eventID] = struct{}{}
			out = append(out, ev)
		}
	}

	if expired > 0 {
		log.D.F("storage: query tombstoned %d expired entries", expired)
		if err := e.flushLocked(); err != nil {
			log.W.F("storage: persist after lazy expiry failed: %v", err)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// indexMatch is the cheap filter test runnable against an index entry
// alone: time bounds, kind membership, id prefix, and the 4-byte author
// prefix. Tag constraints and author prefixes past the first 8 hex digits
// need the event body and are re-checked by filter.F.Matches.
func indexMatch(ent *indexEntry, f *filter.F) bool {
	if f == nil {
		return false
	}
	if f.Since != nil && int64(ent.createdAt) < *f.Since {
		return false
	}
	if f.Until != nil && int64(ent.createdAt) > *f.Until {
		return false
	}
	if len(f.Kinds) > 0 {
		ok := false
		for _, k := range f.Kinds {
			if k == int(ent.kind) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.IDs) > 0 {
		idHex := hex.EncodeToString(ent.eventID[:])
		ok := false
		for _, p := range f.IDs {
			if strings.HasPrefix(idHex, p) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.Authors) > 0 {
		pkHex := hex.EncodeToString(ent.pubkeyPrefix[:])
		ok := false
		for _, p := range f.Authors {
			cmp := p
			if len(cmp) > len(pkHex) {
				cmp = cmp[:len(pkHex)]
			}
			if strings.HasPrefix(pkHex, cmp) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
