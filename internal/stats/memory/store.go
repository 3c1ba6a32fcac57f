// Package memory provides the in-process statistics counter store.
package memory

import (
	"sync"
	"sync/atomic"

	"github.com/haianibrahim/tiktok-scraper/internal/scraper"
)

// DefaultRingSize bounds the recent-activity ring.
const DefaultRingSize = 50

// Store tracks monotonically increasing counters and a bounded ring of
// recent terminal outcomes. Counter increments are atomic; the ring is
// guarded by its own mutex so an append is atomic per operation.
type Store struct {
	counters sync.Map // string -> *atomic.Int64

	ringMu   sync.Mutex
	ring     []scraper.Activity
	ringSize int
}

// NewStore creates a Store with the given ring capacity (<= 0 uses the
// default).
func NewStore(ringSize int) *Store {
	if ringSize <= 0 {
		ringSize = DefaultRingSize
	}
	return &Store{ringSize: ringSize}
}

// Increment adds one to the named counter, creating it lazily.
func (s *Store) Increment(name string) {
	s.counter(name).Add(1)
}

// Get returns the named counter's current value.
func (s *Store) Get(name string) int64 {
	return s.counter(name).Load()
}

// Snapshot returns the well-known counters as one Statistics value.
func (s *Store) Snapshot() scraper.Statistics {
	return scraper.Statistics{
		TotalRequests:     s.Get(scraper.CounterTotalRequests),
		SuccessfulScrapes: s.Get(scraper.CounterSuccessfulScrapes),
		FailedScrapes:     s.Get(scraper.CounterFailedScrapes),
		CacheHits:         s.Get(scraper.CounterCacheHits),
		RateLimitHits:     s.Get(scraper.CounterRateLimitHits),
	}
}

// AppendActivity records a terminal outcome, evicting the oldest entry
// once the ring is full.
func (s *Store) AppendActivity(entry scraper.Activity) {
	s.ringMu.Lock()
	defer s.ringMu.Unlock()
	s.ring = append(s.ring, entry)
	if len(s.ring) > s.ringSize {
		s.ring = s.ring[len(s.ring)-s.ringSize:]
	}
}

// RecentActivity returns a copy of the ring, oldest first.
func (s *Store) RecentActivity() []scraper.Activity {
	s.ringMu.Lock()
	defer s.ringMu.Unlock()
	out := make([]scraper.Activity, len(s.ring))
	copy(out, s.ring)
	return out
}

func (s *Store) counter(name string) *atomic.Int64 {
	if v, ok := s.counters.Load(name); ok {
		return v.(*atomic.Int64)
	}
	v, _ := s.counters.LoadOrStore(name, &atomic.Int64{})
	return v.(*atomic.Int64)
}
