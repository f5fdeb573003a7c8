package storage

import (
	"encoding/binary"
	"fmt"
)

// EntrySize is the packed byte width of a single index entry on disk and
// in the fixed in-memory array.
const EntrySize = 32 + 4 + 4 + 2 + 4 + 4 + 1 + 1

const (
	flagDeleted uint8 = 1 << 0
)

// indexEntry is the packed representation of one stored event's location
// and metadata, kept small and fixed-width so the whole index fits in a
// contiguous in-memory array. fileIndex is a monotone generation token
// embedded in the body file path, so a deleted and re-added id never
// aliases its old file.
type indexEntry struct {
	eventID      [32]byte
	createdAt    uint32
	expiresAt    uint32 // 0 means no expiration
	kind         uint16
	pubkeyPrefix [4]byte
	fileIndex    uint32
	flags        uint8
}

func (e *indexEntry) deleted() bool { return e.flags&flagDeleted != 0 }
func (e *indexEntry) setDeleted()   { e.flags |= flagDeleted }

// marshal packs the entry into a fixed EntrySize-byte slice.
func (e *indexEntry) marshal() []byte {
	b := make([]byte, EntrySize)
	off := 0
	copy(b[off:], e.eventID[:])
	off += 32
	binary.BigEndian.PutUint32(b[off:], e.createdAt)
	off += 4
	binary.BigEndian.PutUint32(b[off:], e.expiresAt)
	off += 4
	binary.BigEndian.PutUint16(b[off:], e.kind)
	off += 2
	copy(b[off:], e.pubkeyPrefix[:])
	off += 4
	binary.BigEndian.PutUint32(b[off:], e.fileIndex)
	off += 4
	b[off] = e.flags
	off++
	// final reserved byte left zero
	return b
}

// unmarshalIndexEntry unpacks a fixed EntrySize-byte slice into an entry.
func unmarshalIndexEntry(b []byte) (indexEntry, error) {
	var e indexEntry
	if len(b) != EntrySize {
		return e, fmt.Errorf("storage: index entry must be %d bytes, got %d", EntrySize, len(b))
	}
	off := 0
	copy(e.eventID[:], b[off:off+32])
	off += 32
	e.createdAt = binary.BigEndian.Uint32(b[off:])
	off += 4
	e.expiresAt = binary.BigEndian.Uint32(b[off:])
	off += 4
	e.kind = binary.BigEndian.Uint16(b[off:])
	off += 2
	copy(e.pubkeyPrefix[:], b[off:off+4])
	off += 4
	e.fileIndex = binary.BigEndian.Uint32(b[off:])
	off += 4
	e.flags = b[off]
	return e, nil
}
