// Package ratelimit implements the fixed-capacity sliding-window rate
// limiter: a bounded array of per-connection buckets, each backed by a
// sliding-window counter, with no map-based secondary index.
package ratelimit

import (
	"sync"
	"time"

	"github.com/RussellLuo/slidingwindow"
)

// MaxBuckets is the number of distinct connections the limiter can track
// concurrently. A connection that cannot get a bucket because all 16 are
// held by other live connections is rejected outright; slots free up when
// their owners disconnect and Reset runs.
const MaxBuckets = 16

// Defaults applied by the server when no thresholds are configured.
const (
	DefaultEventsPerMinute   = 30
	DefaultRequestsPerMinute = 60
)

// ConnID identifies the connection a bucket belongs to. The frame layer
// supplies it and guarantees the close notification arrives before the
// id can be reused.
type ConnID = uint64

type bucket struct {
	used     bool
	conn     ConnID
	lastSeen time.Time
	window   *slidingwindow.Limiter
	stop     slidingwindow.StopFunc
}

// Limiter is a fixed-capacity, per-connection sliding-window rate limiter.
type Limiter struct {
	mu      sync.Mutex
	limit   int64
	window  time.Duration
	buckets [MaxBuckets]bucket
}

// New constructs a limiter allowing up to limit operations per window for
// each distinct connection.
func New(limit int64, window time.Duration) *Limiter {
	return &Limiter{limit: limit, window: window}
}

// Allow reports whether conn may proceed now. Only allowed attempts count
// against the window; a rejected one leaves the count unchanged. A conn
// that cannot be assigned a bucket is rejected.
func (l *Limiter) Allow(conn ConnID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	idx, ok := l.findOrAlloc(conn, now)
	if !ok {
		return false
	}
	b := &l.buckets[idx]
	b.lastSeen = now
	return b.window.Allow()
}

// Reset discards the bucket for conn, if any, releasing its resources.
// Called when the connection closes so the slot can be reused.
func (l *Limiter) Reset(conn ConnID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.buckets {
		if l.buckets[i].used && l.buckets[i].conn == conn {
			if l.buckets[i].stop != nil {
				l.buckets[i].stop()
			}
			l.buckets[i] = bucket{}
			return
		}
	}
}

// Active reports whether conn currently holds a bucket.
func (l *Limiter) Active(conn ConnID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.buckets {
		if l.buckets[i].used && l.buckets[i].conn == conn {
			return true
		}
	}
	return false
}

// findOrAlloc returns the index of conn's bucket, allocating a free slot
// if it has none. When every slot is held by another connection it
// reports false: the caller rejects rather than displace a live bucket.
// Caller must hold l.mu.
func (l *Limiter) findOrAlloc(conn ConnID, now time.Time) (int, bool) {
	for i := range l.buckets {
		if l.buckets[i].used && l.buckets[i].conn == conn {
			return i, true
		}
	}

	for i := range l.buckets {
		if !l.buckets[i].used {
			l.initBucket(i, conn, now)
			return i, true
		}
	}

	return 0, false
}

func (l *Limiter) initBucket(i int, conn ConnID, now time.Time) {
	win, stop := slidingwindow.NewLocalWindow()
	limiter, _ := slidingwindow.NewLimiter(l.window, l.limit, func() (slidingwindow.Window, slidingwindow.StopFunc) {
		return win, stop
	})
	l.buckets[i] = bucket{used: true, conn: conn, lastSeen: now, window: limiter, stop: stop}
}
