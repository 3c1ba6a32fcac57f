// Package scraper defines core types shared across subsystems.
package scraper

import (
	"encoding/json"
	"net/http"
	"time"
)

// VideoRecord is the structured metadata extracted for one video page.
// It is immutable once produced; derived metrics live on read-only methods.
type VideoRecord struct {
	CanonicalURL string          `json:"canonical_url"`
	VideoID      string          `json:"video_id"`
	Description  string          `json:"description"`
	Username     string          `json:"username"`
	DisplayName  string          `json:"display_name"`
	UserID       string          `json:"user_id"`
	AvatarURL    string          `json:"avatar_url,omitempty"`
	Thumbnail    string          `json:"thumbnail"`
	Views        int64           `json:"views"`
	Likes        int64           `json:"likes"`
	Comments     int64           `json:"comments"`
	Shares       int64           `json:"shares"`
	Favorites    int64           `json:"favorites"`
	MusicTitle   string          `json:"music_title,omitempty"`
	MusicAuthor  string          `json:"music_author,omitempty"`
	PlayURL      string          `json:"play_url,omitempty"`
	DurationSec  int64           `json:"duration_seconds,omitempty"`
	CreateTime   int64           `json:"create_time,omitempty"`
	Raw          json.RawMessage `json:"raw,omitempty"`
	ScrapedAt    time.Time       `json:"scraped_at"`
}

// FetchRequest captures everything needed to fetch a video page.
type FetchRequest struct {
	URL            string
	Headers        http.Header
	Timeout        time.Duration
	ConnectTimeout time.Duration
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Outcome classifies how a scrape attempt terminated.
type Outcome string

// Terminal outcomes recorded in the activity ring.
const (
	OutcomeSuccess     Outcome = "success"
	OutcomeFailed      Outcome = "failed"
	OutcomeCacheHit    Outcome = "cache_hit"
	OutcomeRateLimited Outcome = "rate_limited"
)

// Activity is one entry in the bounded recent-activity ring.
type Activity struct {
	URL     string    `json:"url"`
	Outcome Outcome   `json:"outcome"`
	Error   string    `json:"error,omitempty"`
	TS      time.Time `json:"ts"`
}

// Statistics is a point-in-time snapshot of the process counters.
type Statistics struct {
	TotalRequests     int64 `json:"total_requests"`
	SuccessfulScrapes int64 `json:"successful_scrapes"`
	FailedScrapes     int64 `json:"failed_scrapes"`
	CacheHits         int64 `json:"cache_hits"`
	RateLimitHits     int64 `json:"rate_limit_hits"`
}

// Counter names used with the StatsStore.
const (
	CounterTotalRequests     = "total_requests"
	CounterSuccessfulScrapes = "successful_scrapes"
	CounterFailedScrapes     = "failed_scrapes"
	CounterCacheHits         = "cache_hits"
	CounterRateLimitHits     = "rate_limit_hits"
)
