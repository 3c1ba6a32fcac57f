// Package ratelimit implements the caller-facing admission gate and the
// outbound per-host pacer.
package ratelimit

import (
	"sync"
	"time"

	"github.com/haianibrahim/tiktok-scraper/internal/scraper"
)

type windowEntry struct {
	count int
	start time.Time
}

// Window is an in-memory fixed-window counter store. Each key's window
// opens on its first hit and resets windowSeconds later; the window
// boundary is keyed to that first hit, not to wall-clock minutes. The
// check and the increment run inside one critical section per key, so two
// concurrent callers can never both be admitted across the limit.
type Window struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	clock   scraper.Clock
	// window is remembered per store so the read-only counter ops can
	// compute expiry without the caller re-supplying it.
	window time.Duration
}

// NewWindow builds a store. window is the default used by the raw counter
// operations; Admit and Hit accept an explicit value per call.
func NewWindow(clock scraper.Clock, window time.Duration) *Window {
	if window <= 0 {
		window = time.Minute
	}
	return &Window{
		entries: make(map[string]*windowEntry),
		clock:   clock,
		window:  window,
	}
}

// Admit checks the key's counter against maxAttempts and increments it as
// one atomic unit. On rejection the decision carries the remaining time
// until the window resets.
func (w *Window) Admit(key string, maxAttempts int, window time.Duration) scraper.Decision {
	if window <= 0 {
		window = w.window
	}
	now := w.clock.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	entry := w.fresh(key, now, window)
	if entry.count >= maxAttempts {
		return scraper.Decision{
			OK:         false,
			Remaining:  0,
			RetryAfter: entry.start.Add(window).Sub(now),
		}
	}
	entry.count++
	return scraper.Decision{OK: true, Remaining: maxAttempts - entry.count}
}

// TooManyAttempts reports whether the key has exhausted its attempts in
// the current window. It does not consume an attempt.
func (w *Window) TooManyAttempts(key string, maxAttempts int) bool {
	now := w.clock.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fresh(key, now, w.window).count >= maxAttempts
}

// Hit records one attempt against the key and returns the new count.
func (w *Window) Hit(key string, window time.Duration) int {
	if window <= 0 {
		window = w.window
	}
	now := w.clock.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	entry := w.fresh(key, now, window)
	entry.count++
	return entry.count
}

// RetriesLeft returns how many attempts remain in the current window.
func (w *Window) RetriesLeft(key string, maxAttempts int) int {
	now := w.clock.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	left := maxAttempts - w.fresh(key, now, w.window).count
	if left < 0 {
		return 0
	}
	return left
}

// AvailableIn returns the time until the key's window resets; zero when
// the key has no live window.
func (w *Window) AvailableIn(key string) time.Duration {
	now := w.clock.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, ok := w.entries[key]
	if !ok || entry.count == 0 {
		return 0
	}
	remaining := entry.start.Add(w.window).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// fresh returns the live entry for key, lazily creating it and resetting
// it when its window has elapsed. Callers must hold the mutex.
func (w *Window) fresh(key string, now time.Time, window time.Duration) *windowEntry {
	entry, ok := w.entries[key]
	if !ok {
		entry = &windowEntry{start: now}
		w.entries[key] = entry
		return entry
	}
	if now.Sub(entry.start) >= window {
		entry.count = 0
		entry.start = now
	}
	return entry
}
