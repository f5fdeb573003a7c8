package storage

import (
	"encoding/binary"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// entriesPerChunk bounds how many packed index entries are stored in a
// single badger value, keeping individual values small.
const entriesPerChunk = 50

const (
	keyCount   = "count"
	keyNextIdx = "next_idx"
)

func chunkKey(n int) string {
	return fmt.Sprintf("idx_%d", n)
}

// flushLocked writes the entire index (tombstones included, so the
// DELETED flag survives a restart) to badger as a sequence of fixed-size
// chunks, replacing whatever was there before. Badger's transaction gives
// the prepare/commit atomicity the format needs: either every key in the
// transaction lands, or none does, and a failed flush leaves the previous
// committed index intact. Caller must hold e.mu.
func (e *Engine) flushLocked() error {
	return e.db.Update(func(txn *badger.Txn) error {
		if err := clearChunks(txn); err != nil {
			return err
		}

		countBuf := make([]byte, 2)
		binary.BigEndian.PutUint16(countBuf, uint16(len(e.entries)))
		if err := txn.Set([]byte(keyCount), countBuf); err != nil {
			return err
		}

		nextBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(nextBuf, e.nextFile)
		if err := txn.Set([]byte(keyNextIdx), nextBuf); err != nil {
			return err
		}

		for chunkNum := 0; chunkNum*entriesPerChunk < len(e.entries); chunkNum++ {
			start := chunkNum * entriesPerChunk
			end := start + entriesPerChunk
			if end > len(e.entries) {
				end = len(e.entries)
			}
			chunk := make([]byte, 0, (end-start)*EntrySize)
			for _, ent := range e.entries[start:end] {
				chunk = append(chunk, ent.marshal()...)
			}
			if err := txn.Set([]byte(chunkKey(chunkNum)), chunk); err != nil {
				return err
			}
		}
		return nil
	})
}

// clearChunks removes every previously-written idx_* key so a shorter
// index doesn't leave stale trailing chunks behind. Must run inside the
// same transaction as the writes that follow it.
func clearChunks(txn *badger.Txn) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	var toDelete [][]byte
	prefix := []byte("idx_")
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		k := it.Item().KeyCopy(nil)
		toDelete = append(toDelete, k)
	}
	for _, k := range toDelete {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// load restores the index from badger on startup, preserving the
// insertion order the flush wrote it in.
func (e *Engine) load() error {
	return e.db.View(func(txn *badger.Txn) error {
		nextItem, err := txn.Get([]byte(keyNextIdx))
		if err == nil {
			if err := nextItem.Value(func(v []byte) error {
				if len(v) == 4 {
					e.nextFile = binary.BigEndian.Uint32(v)
				}
				return nil
			}); err != nil {
				return err
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		countItem, err := txn.Get([]byte(keyCount))
		var count int
		if err == nil {
			if err := countItem.Value(func(v []byte) error {
				if len(v) == 2 {
					count = int(binary.BigEndian.Uint16(v))
				}
				return nil
			}); err != nil {
				return err
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		restored := 0
		for chunkNum := 0; restored < count; chunkNum++ {
			item, err := txn.Get([]byte(chunkKey(chunkNum)))
			if err != nil {
				return fmt.Errorf("storage: missing chunk %d while restoring %d entries: %w", chunkNum, count, err)
			}
			if err := item.Value(func(v []byte) error {
				for off := 0; off+EntrySize <= len(v) && restored < count; off += EntrySize {
					ent, err := unmarshalIndexEntry(v[off : off+EntrySize])
					if err != nil {
						return err
					}
					e.entries = append(e.entries, ent)
					restored++
				}
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
