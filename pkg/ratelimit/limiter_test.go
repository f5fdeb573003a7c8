package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	l := New(3, time.Minute)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(1))
	}
	assert.False(t, l.Allow(1))
}

func TestLimiter_TracksConnectionsIndependently(t *testing.T) {
	l := New(1, time.Minute)
	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(2))
	assert.False(t, l.Allow(1))
}

func TestLimiter_ResetClearsBucket(t *testing.T) {
	l := New(1, time.Minute)
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
	assert.True(t, l.Active(1))
	l.Reset(1)
	assert.False(t, l.Active(1))
	assert.True(t, l.Allow(1))
}

func TestLimiter_RejectsWhenAllBucketsHeldByOthers(t *testing.T) {
	l := New(100, time.Minute)
	for i := 0; i < MaxBuckets; i++ {
		assert.True(t, l.Allow(uint64(i)))
	}
	// A 17th connection gets no bucket and is rejected; existing
	// connections keep theirs.
	assert.False(t, l.Allow(uint64(MaxBuckets)))
	assert.True(t, l.Allow(0))

	// A slot freed by a disconnect becomes available again.
	l.Reset(0)
	assert.True(t, l.Allow(uint64(MaxBuckets)))
}
