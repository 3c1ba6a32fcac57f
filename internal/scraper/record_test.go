package scraper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haianibrahim/tiktok-scraper/internal/scraper"
)

func TestEngagementRate(t *testing.T) {
	t.Parallel()

	r := scraper.VideoRecord{Views: 1000, Likes: 80, Comments: 15, Shares: 5}
	assert.InDelta(t, 10.0, r.EngagementRate(), 1e-9)

	zero := scraper.VideoRecord{Views: 0, Likes: 50}
	assert.Equal(t, 0.0, zero.EngagementRate(), "zero views must not divide by zero")
}

func TestHasHighEngagement(t *testing.T) {
	t.Parallel()

	r := scraper.VideoRecord{Likes: 9000, Comments: 900, Shares: 100}
	assert.True(t, r.HasHighEngagement(0), "10000 interactions meets the default threshold")
	assert.True(t, r.HasHighEngagement(10000))
	assert.False(t, r.HasHighEngagement(10001))
}

func TestFormatCount(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1K"},
		{1500, "1.5K"},
		{1549, "1.5K"},
		{1550, "1.6K"},
		{999999, "1000K"},
		{1000000, "1M"},
		{2300000, "2.3M"},
		{1000000000, "1B"},
		{1500000000, "1.5B"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, scraper.FormatCount(tc.n), "n=%d", tc.n)
	}
}

func TestDerivedURLs(t *testing.T) {
	t.Parallel()

	r := scraper.VideoRecord{VideoID: "7234567890123456789", Username: "john.doe"}
	assert.Equal(t, "https://www.tiktok.com/embed/v2/7234567890123456789", r.EmbedURL())
	assert.Equal(t, "https://www.tiktok.com/@john.doe", r.ProfileURL())
}

func TestFormattedCounters(t *testing.T) {
	t.Parallel()

	r := scraper.VideoRecord{Views: 1500000, Likes: 2500}
	assert.Equal(t, "1.5M", r.FormattedViews())
	assert.Equal(t, "2.5K", r.FormattedLikes())
}
