package scraper_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haianibrahim/tiktok-scraper/internal/scraper"
)

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("connection refused")
	err := scraper.NewNetworkError("https://vm.tiktok.com/abc", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, scraper.NewNetworkError("u", errors.New("x")).Retryable())
	assert.True(t, scraper.NewEmptyBodyError("u").Retryable())
	assert.False(t, scraper.NewInvalidURLError("u").Retryable())
	assert.False(t, scraper.NewRateLimitError("u", time.Second).Retryable())
	assert.False(t, scraper.NewStructureError("u", "bad").Retryable())
	assert.False(t, scraper.NewDecodeError("u", errors.New("x")).Retryable())
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, scraper.KindInvalidURL, scraper.KindOf(scraper.NewInvalidURLError("u")))
	assert.Equal(t, scraper.Kind(""), scraper.KindOf(errors.New("plain")))
	assert.Equal(t, scraper.Kind(""), scraper.KindOf(nil))

	wrapped := fmt.Errorf("outer: %w", scraper.NewDecodeError("u", errors.New("x")))
	assert.Equal(t, scraper.KindDecode, scraper.KindOf(wrapped))
}

func TestRateLimitErrorCarriesRetryAfter(t *testing.T) {
	t.Parallel()

	err := scraper.NewRateLimitError("u", 42*time.Second)
	var se *scraper.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 42*time.Second, se.RetryAfter)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}
