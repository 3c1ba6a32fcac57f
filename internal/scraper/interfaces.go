package scraper

import (
	"context"
	"time"
)

// Fetcher retrieves a page and returns the body plus metadata.
// Implementations perform exactly one attempt per call; retries are a
// decorator concern.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// CacheStore is a key-value cache with per-entry TTL. A single key's write
// is last-write-wins; readers never observe partially written values.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration)
	Forget(ctx context.Context, key string) bool
	Flush(ctx context.Context)
}

// Decision is the outcome of a rate-limit admission check.
type Decision struct {
	OK         bool
	Remaining  int
	RetryAfter time.Duration
}

// Gate admits or rejects a request against a per-key window. The check and
// the increment happen as one atomic step with respect to concurrent
// callers sharing the same key.
type Gate interface {
	Admit(key string, maxAttempts int, window time.Duration) Decision
}

// RateLimitStore exposes raw counter operations for callers that need
// visibility beyond admission (remaining attempts, time to reset).
type RateLimitStore interface {
	TooManyAttempts(key string, maxAttempts int) bool
	Hit(key string, window time.Duration) int
	RetriesLeft(key string, maxAttempts int) int
	AvailableIn(key string) time.Duration
}

// StatsStore holds monotonically increasing counters plus a bounded
// recent-activity ring. Increments are atomic per operation; lost updates
// across operations are tolerated.
type StatsStore interface {
	Increment(name string)
	Get(name string) int64
	Snapshot() Statistics
	AppendActivity(entry Activity)
	RecentActivity() []Activity
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Hasher computes digests for cache-key derivation.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
