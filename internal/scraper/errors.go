package scraper

import (
	"errors"
	"fmt"
	"time"
)

// Kind is a stable identifier for a scrape failure class. External callers
// (HTTP API, CLI) branch on Kind rather than parsing message text.
type Kind string

// Failure classes, ordered by pipeline stage.
const (
	KindInvalidURL      Kind = "invalid_url"
	KindRateLimited     Kind = "rate_limited"
	KindNetwork         Kind = "network"
	KindEmptyBody       Kind = "empty_body"
	KindPayloadNotFound Kind = "payload_not_found"
	KindDecode          Kind = "decode"
	KindStructure       Kind = "structure"
)

// Error is the typed failure returned by every scrape operation. It carries
// the URL, the failure class, and the wrapped cause for diagnostics.
type Error struct {
	Kind       Kind
	URL        string
	Message    string
	RetryAfter time.Duration
	Err        error
}

// Error renders the message plus the wrapped cause, if any.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether a retry could plausibly change the outcome.
// Structural mismatches never benefit from a retry.
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindEmptyBody
}

// NewInvalidURLError rejects input that fails the URL classifier.
func NewInvalidURLError(url string) *Error {
	return &Error{Kind: KindInvalidURL, URL: url, Message: fmt.Sprintf("invalid TikTok URL: %s", url)}
}

// NewRateLimitError reports a rejected admission with the wait hint.
func NewRateLimitError(url string, retryAfter time.Duration) *Error {
	return &Error{
		Kind:       KindRateLimited,
		URL:        url,
		Message:    "rate limit exceeded, please try again later",
		RetryAfter: retryAfter,
	}
}

// NewNetworkError wraps a transport failure (DNS, TLS, refused, timeout,
// canceled).
func NewNetworkError(url string, err error) *Error {
	return &Error{Kind: KindNetwork, URL: url, Message: "network error fetching page", Err: err}
}

// NewEmptyBodyError reports an HTTP response with no body to parse.
func NewEmptyBodyError(url string) *Error {
	return &Error{Kind: KindEmptyBody, URL: url, Message: "empty response body"}
}

// NewPayloadNotFoundError reports a page without the embedded data block.
func NewPayloadNotFoundError(url string, err error) *Error {
	return &Error{Kind: KindPayloadNotFound, URL: url, Message: "unable to locate embedded data on the page", Err: err}
}

// NewDecodeError reports malformed JSON inside the embedded data block.
func NewDecodeError(url string, err error) *Error {
	return &Error{Kind: KindDecode, URL: url, Message: "failed to decode embedded JSON", Err: err}
}

// NewStructureError reports well-formed JSON that is not a usable video page.
func NewStructureError(url string, msg string) *Error {
	return &Error{Kind: KindStructure, URL: url, Message: msg}
}

// KindOf extracts the failure class from err, or "" when err is not a
// scraper error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
