package scraper

import (
	"fmt"
	"math"
)

// DefaultEngagementThreshold is the interaction count above which a video
// counts as high engagement.
const DefaultEngagementThreshold = 10000

// EmbedURL returns the embeddable player URL for the video.
func (r VideoRecord) EmbedURL() string {
	return fmt.Sprintf("https://www.tiktok.com/embed/v2/%s", r.VideoID)
}

// ProfileURL returns the author's profile URL.
func (r VideoRecord) ProfileURL() string {
	return fmt.Sprintf("https://www.tiktok.com/@%s", r.Username)
}

// EngagementRate returns (likes+comments+shares)/views as a percentage.
// A video with zero views has a rate of 0.0 rather than dividing by zero.
func (r VideoRecord) EngagementRate() float64 {
	if r.Views == 0 {
		return 0.0
	}
	total := r.Likes + r.Comments + r.Shares
	return float64(total) / float64(r.Views) * 100
}

// HasHighEngagement reports whether total interactions meet the threshold.
// A threshold <= 0 falls back to DefaultEngagementThreshold.
func (r VideoRecord) HasHighEngagement(threshold int64) bool {
	if threshold <= 0 {
		threshold = DefaultEngagementThreshold
	}
	return r.Likes+r.Comments+r.Shares >= threshold
}

// FormattedViews renders the view count with a magnitude suffix.
func (r VideoRecord) FormattedViews() string {
	return FormatCount(r.Views)
}

// FormattedLikes renders the like count with a magnitude suffix.
func (r VideoRecord) FormattedLikes() string {
	return FormatCount(r.Likes)
}

// FormatCount renders n with a K/M/B suffix rounded to one decimal place.
// Whole values drop the trailing ".0" (1500 -> "1.5K", 1000000 -> "1M").
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return formatScaled(n, 1_000_000_000, "B")
	case n >= 1_000_000:
		return formatScaled(n, 1_000_000, "M")
	case n >= 1_000:
		return formatScaled(n, 1_000, "K")
	default:
		return fmt.Sprintf("%d", n)
	}
}

func formatScaled(n, divisor int64, suffix string) string {
	v := math.Round(float64(n)/float64(divisor)*10) / 10
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d%s", int64(v), suffix)
	}
	return fmt.Sprintf("%.1f%s", v, suffix)
}
