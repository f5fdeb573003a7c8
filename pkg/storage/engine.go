// Package storage implements the relay's storage engine: a fixed-capacity
// in-memory index backed by a chunked badger key/value store for
// durability, with event bodies kept one-file-per-event on the OS
// filesystem. No secondary indexes are maintained; queries are satisfied
// by a linear scan of the index array.
package storage

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"wisp.relay/pkg/encoders/event"
	"wisp.relay/pkg/encoders/kind"
)

// MaxEvents is the fixed capacity of the index, tombstones included.
const MaxEvents = 5000

// MaxQueryLimit caps how many events a single filter may request; a
// filter with no limit of its own is served up to this many.
const MaxQueryLimit = 500

// flushEverySaves is how many successful saves may accumulate before the
// index is flushed to badger. A crash between flushes loses at most
// flushEverySaves-1 entries; deletes, purges, and compactions always
// flush immediately.
const flushEverySaves = 10

const (
	cleanupWakeInterval = time.Second
	cleanupSweepWakes   = 60
	compactEverySweeps  = 10
)

// Engine is the storage engine. The zero value is not usable; use Open.
//
// The index is a dense, insertion-ordered slice. Deleting an entry only
// sets its DELETED flag; the slot is reclaimed when Compact shifts the
// survivors down, preserving their relative order.
type Engine struct {
	mu         sync.Mutex
	entries    []indexEntry
	nextFile   uint32
	defaultTTL time.Duration
	saves      int // successful saves since the last flush

	db      *badger.DB
	dataDir string

	cancel context.CancelFunc
	done   chan struct{}
}

// Open opens (creating if necessary) the storage engine rooted at
// dataDir, restoring its index from the persisted badger chunks and
// starting the background expiration/compaction loop. Every stored event
// lives at most defaultTTL past its created_at (clamped down by an
// explicit expiration tag); a zero defaultTTL means events never expire
// on their own.
func Open(dataDir string, defaultTTL time.Duration) (*Engine, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, "events"), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dataDir, "badger"), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create badger dir: %w", err)
	}

	opts := badger.DefaultOptions(filepath.Join(dataDir, "badger")).
		WithLogger(nil).
		WithSyncWrites(false)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger: %w", err)
	}

	e := &Engine{
		entries:    make([]indexEntry, 0, MaxEvents),
		defaultTTL: defaultTTL,
		db:         db,
		dataDir:    dataDir,
	}
	if err := e.load(); err != nil {
		chk.E(err)
		log.W.F("storage: index restore failed, starting empty: %v", err)
		e.entries = e.entries[:0]
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	go e.cleanupLoop(ctx)

	return e, nil
}

// Close stops the background loop, flushes the index, and closes the
// underlying store.
func (e *Engine) Close() error {
	e.cancel()
	<-e.done
	e.mu.Lock()
	err := e.flushLocked()
	e.mu.Unlock()
	chk.E(err)
	return e.db.Close()
}

// Count returns the number of live (non-tombstoned) entries in the index.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for i := range e.entries {
		if !e.entries[i].deleted() {
			n++
		}
	}
	return n
}

// Exists reports whether a live entry with the given id is present.
func (e *Engine) Exists(id [32]byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.findLiveByID(id)
	return ok
}

func (e *Engine) eventPath(id [32]byte, fileIndex uint32) string {
	idHex := hex.EncodeToString(id[:])
	dir := filepath.Join(e.dataDir, "events", idHex[:2])
	return filepath.Join(dir, fmt.Sprintf("%s_%08x.bin", idHex[:16], fileIndex))
}

func (e *Engine) writeBody(id [32]byte, fileIndex uint32, ev *event.E) error {
	p := e.eventPath(id, fileIndex)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	b, err := ev.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o644)
}

func (e *Engine) readBody(id [32]byte, fileIndex uint32) (*event.E, error) {
	p := e.eventPath(id, fileIndex)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	ev := event.New()
	if err := ev.UnmarshalJSON(b); err != nil {
		return nil, err
	}
	return ev, nil
}

func (e *Engine) removeBody(id [32]byte, fileIndex uint32) {
	if err := os.Remove(e.eventPath(id, fileIndex)); err != nil && !os.IsNotExist(err) {
		chk.E(err)
	}
}

// tombstoneLocked marks entry i deleted and unlinks its body file.
// Caller must hold e.mu.
func (e *Engine) tombstoneLocked(i int) {
	e.removeBody(e.entries[i].eventID, e.entries[i].fileIndex)
	e.entries[i].setDeleted()
}

// findLiveByID returns the index of the non-tombstoned entry with the
// given id. Tombstoned entries are invisible here, so a deleted event's
// id can be stored again; the fresh entry's file_index keeps its body
// path distinct from the old one. Caller must hold e.mu.
func (e *Engine) findLiveByID(id [32]byte) (int, bool) {
	for i := range e.entries {
		if !e.entries[i].deleted() && e.entries[i].eventID == id {
			return i, true
		}
	}
	return 0, false
}

func prefixEqual(prefix [4]byte, pubkey []byte) bool {
	if len(pubkey) < 4 {
		return false
	}
	return prefix[0] == pubkey[0] && prefix[1] == pubkey[1] && prefix[2] == pubkey[2] && prefix[3] == pubkey[3]
}

// classOf reports the supersession class for kind k: replaceable keys are
// (pubkey, kind); parameterized-replaceable keys are (pubkey, kind, d).
func classOf(k kind.K) string {
	switch {
	case k.IsReplaceable():
		return "replaceable"
	case k.IsParameterizedReplaceable():
		return "addressable"
	default:
		return "regular"
	}
}
