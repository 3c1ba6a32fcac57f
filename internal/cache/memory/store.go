// Package memory provides an in-process cache store for development and
// single-node deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/haianibrahim/tiktok-scraper/internal/scraper"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is a TTL key-value cache. Writes are last-write-wins per key and
// readers never observe a partially written value: the stored slice is
// copied on both sides of the map.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   scraper.Clock

	janitorOnce sync.Once
	stopCh      chan struct{}
}

// NewStore creates an empty store using the provided clock for expiry.
func NewStore(clock scraper.Clock) *Store {
	return &Store{
		entries: make(map[string]entry),
		clock:   clock,
		stopCh:  make(chan struct{}),
	}
}

// Get returns the live value for key. Expired entries behave as absent.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool) {
	now := s.clock.Now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || now.After(e.expiresAt) {
		return nil, false
	}
	return append([]byte(nil), e.value...), true
}

// Put stores value under key with the given TTL, replacing any prior entry.
func (s *Store) Put(_ context.Context, key string, value []byte, ttl time.Duration) {
	e := entry{
		value:     append([]byte(nil), value...),
		expiresAt: s.clock.Now().Add(ttl),
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

// Forget removes key and reports whether a live entry existed.
func (s *Store) Forget(_ context.Context, key string) bool {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	delete(s.entries, key)
	return !now.After(e.expiresAt)
}

// Flush removes every entry.
func (s *Store) Flush(_ context.Context) {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// Len returns the number of stored entries, including not-yet-swept
// expired ones.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartJanitor launches a background sweep that evicts expired entries
// every interval. It is idempotent; Stop terminates the sweep.
func (s *Store) StartJanitor(interval time.Duration) {
	s.janitorOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-s.stopCh:
					return
				case <-ticker.C:
					s.sweep()
				}
			}
		}()
	})
}

// Stop terminates the janitor goroutine if one is running.
func (s *Store) Stop() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
}

func (s *Store) sweep() {
	now := s.clock.Now()
	s.mu.Lock()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}
