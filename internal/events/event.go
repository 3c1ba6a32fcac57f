// Package events defines the domain signals emitted by the scrape pipeline.
package events

import (
	"errors"
	"fmt"
	"time"
)

// Type denotes the kind of signal represented by an Event.
type Type string

// Supported event types.
const (
	TypeScraped     Type = "SCRAPED"
	TypeFailed      Type = "FAILED"
	TypeRateLimited Type = "RATE_LIMITED"
)

// Event captures one terminal scrape outcome.
type Event struct {
	// Type denotes which signal occurred.
	Type Type
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// URL is the requested video URL.
	URL string
	// VideoID and Username are set on successful scrapes.
	VideoID  string
	Username string
	// ErrorKind carries the stable failure identifier for FAILED events.
	ErrorKind string
	// Note lets emitters attach low-volume debug context (e.g. error text).
	Note string
	// CacheHit marks SCRAPED events served from cache without a fetch.
	CacheHit bool
	// Dur captures end-to-end latency of the attempt.
	Dur time.Duration
	// RetryAfter is the wait hint attached to RATE_LIMITED events.
	RetryAfter time.Duration
	// Requester optionally identifies the caller (IP or user id).
	Requester string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	if e.URL == "" {
		return errors.New("url is required")
	}
	switch e.Type {
	case TypeScraped:
		if e.VideoID == "" {
			return errors.New("scraped event requires video id")
		}
	case TypeFailed:
		if e.ErrorKind == "" {
			return errors.New("failed event requires error kind")
		}
	case TypeRateLimited:
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
