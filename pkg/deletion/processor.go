// Package deletion implements NIP-09 deletion-request processing: a
// kind-5 event's "e", "a", and "k" tags name the events it asks the relay
// to tombstone.
package deletion

import (
	"encoding/hex"
	"strconv"
	"strings"

	"lol.mleku.dev/log"

	"wisp.relay/pkg/encoders/event"
	"wisp.relay/pkg/utils"
)

// MaxKindTargets bounds how many "k" tags a single deletion request may
// act on; the rest are ignored.
const MaxKindTargets = 32

// Store is the subset of the storage engine the processor needs.
type Store interface {
	DeleteByID(id [32]byte, pubkey []byte) bool
	DeleteByAddress(pubkey []byte, kind uint16, dTag string, until int64) int
	DeleteByKind(pubkey []byte, kind uint16, until int64) int
}

// Result summarizes how many tombstones a deletion request produced.
type Result struct {
	ByID      int
	ByAddress int
	ByKind    int
}

// Total returns how many entries the request tombstoned in all.
func (r Result) Total() int { return r.ByID + r.ByAddress + r.ByKind }

// Process applies every "e", "a", and "k" tag on a kind-5 ev against
// store, scoped to ev's own author: a deletion request can only delete
// its author's own events. "a" and "k" targets are further limited to
// events created at or before the request itself; "e" targets have no
// time bound. Unauthorized targets are skipped rather than failing the
// whole request.
//
// A malformed "a" tag carrying only kind:pubkey (no trailing ":d") is
// accepted and treated as d="" rather than rejected.
func Process(ev *event.E, store Store) Result {
	var res Result
	if ev.Tags == nil {
		return res
	}

	for _, t := range ev.Tags.GetAll("e") {
		id, ok := decodeID(t.Value())
		if !ok {
			continue
		}
		if store.DeleteByID(id, ev.Pubkey) {
			res.ByID++
		}
	}

	for _, t := range ev.Tags.GetAll("a") {
		addr, ok := parseAddressTag(t.Value())
		if !ok {
			continue
		}
		if !utils.FastEqual(addr.pubkey, ev.Pubkey) {
			log.W.F("deletion: skipping a-tag %q: target author is not the requester", t.Value())
			continue
		}
		res.ByAddress += store.DeleteByAddress(ev.Pubkey, addr.kind, addr.dTag, ev.CreatedAt)
	}

	kinds := ev.Tags.GetAll("k")
	if len(kinds) > MaxKindTargets {
		kinds = kinds[:MaxKindTargets]
	}
	for _, t := range kinds {
		k, err := strconv.ParseUint(t.Value(), 10, 16)
		if err != nil {
			continue
		}
		res.ByKind += store.DeleteByKind(ev.Pubkey, uint16(k), ev.CreatedAt)
	}

	return res
}

func decodeID(hexStr string) ([32]byte, bool) {
	var out [32]byte
	if len(hexStr) != 64 {
		return out, false
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return out, false
	}
	copy(out[:], b)
	return out, true
}

type address struct {
	kind   uint16
	pubkey []byte
	dTag   string
}

// parseAddressTag splits an "a" tag value of the form "kind:pubkey:d"
// into its components. A value with only "kind:pubkey" (no third field)
// is accepted with d="".
func parseAddressTag(v string) (address, bool) {
	parts := strings.SplitN(v, ":", 3)
	if len(parts) < 2 {
		return address{}, false
	}
	k, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return address{}, false
	}
	pk, ok := decodePubkey(parts[1])
	if !ok {
		return address{}, false
	}
	a := address{kind: uint16(k), pubkey: pk}
	if len(parts) == 3 {
		a.dTag = parts[2]
	}
	return a, true
}

func decodePubkey(hexStr string) ([]byte, bool) {
	if len(hexStr) != 64 {
		return nil, false
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, false
	}
	return b, true
}
