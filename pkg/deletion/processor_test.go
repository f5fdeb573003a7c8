package deletion

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"wisp.relay/pkg/encoders/event"
	"wisp.relay/pkg/encoders/tag"
)

type fakeStore struct {
	deletedIDs      [][32]byte
	deletedAddrKind uint16
	deletedAddrD    string
	addrUntil       int64
	addrCalls       int
	kindCalls       int
}

func (f *fakeStore) DeleteByID(id [32]byte, pubkey []byte) bool {
	f.deletedIDs = append(f.deletedIDs, id)
	return true
}

func (f *fakeStore) DeleteByAddress(pubkey []byte, kind uint16, dTag string, until int64) int {
	f.addrCalls++
	f.deletedAddrKind = kind
	f.deletedAddrD = dTag
	f.addrUntil = until
	return 1
}

func (f *fakeStore) DeleteByKind(pubkey []byte, kind uint16, until int64) int {
	f.kindCalls++
	return 1
}

func deletionEvent(tags ...*tag.T) *event.E {
	ev := event.New()
	ev.Pubkey = make([]byte, 32)
	ev.Kind = 5
	ev.CreatedAt = 1700000000
	for _, t := range tags {
		ev.Tags.Append(t)
	}
	return ev
}

func ownAddr(ev *event.E, kind string, d string) string {
	a := kind + ":" + hex.EncodeToString(ev.Pubkey)
	if d != "" {
		a += ":" + d
	}
	return a
}

func TestProcess_EventIDTag(t *testing.T) {
	id := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	ev := deletionEvent(tag.New("e", id))
	store := &fakeStore{}
	res := Process(ev, store)
	assert.Equal(t, 1, res.ByID)
}

func TestProcess_AddressTagFullForm(t *testing.T) {
	ev := deletionEvent()
	ev.Tags.Append(tag.New("a", ownAddr(ev, "30023", "my-article")))
	store := &fakeStore{}
	res := Process(ev, store)
	assert.Equal(t, 1, res.ByAddress)
	assert.Equal(t, uint16(30023), store.deletedAddrKind)
	assert.Equal(t, "my-article", store.deletedAddrD)
	assert.Equal(t, ev.CreatedAt, store.addrUntil)
}

func TestProcess_AddressTagMalformedTwoField(t *testing.T) {
	ev := deletionEvent()
	ev.Tags.Append(tag.New("a", ownAddr(ev, "30023", "")))
	store := &fakeStore{}
	res := Process(ev, store)
	assert.Equal(t, 1, res.ByAddress)
	assert.Equal(t, "", store.deletedAddrD)
}

func TestProcess_AddressTagForeignPubkeySkipped(t *testing.T) {
	other := make([]byte, 32)
	other[0] = 0xFF
	ev := deletionEvent(tag.New("a", "30023:"+hex.EncodeToString(other)+":x"))
	store := &fakeStore{}
	res := Process(ev, store)
	assert.Equal(t, 0, res.ByAddress)
	assert.Equal(t, 0, store.addrCalls)
}

func TestProcess_KindTag(t *testing.T) {
	ev := deletionEvent(tag.New("k", "1"))
	store := &fakeStore{}
	res := Process(ev, store)
	assert.Equal(t, 1, res.ByKind)
}

func TestProcess_KindTagsCapped(t *testing.T) {
	ev := deletionEvent()
	for i := 0; i < MaxKindTargets+5; i++ {
		ev.Tags.Append(tag.New("k", fmt.Sprintf("%d", 1000+i)))
	}
	store := &fakeStore{}
	res := Process(ev, store)
	assert.Equal(t, MaxKindTargets, res.ByKind)
	assert.Equal(t, MaxKindTargets, store.kindCalls)
}

func TestProcess_InvalidEventIDIgnored(t *testing.T) {
	ev := deletionEvent(tag.New("e", "not-hex"))
	store := &fakeStore{}
	res := Process(ev, store)
	assert.Equal(t, 0, res.ByID)
	assert.Empty(t, store.deletedIDs)
}
