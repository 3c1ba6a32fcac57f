package scraper

import (
	"fmt"
	"regexp"
)

// Recognized TikTok URL shapes. A URL is scrapeable when it matches any of
// them; matching is case-insensitive for scheme and host.
var videoURLPatterns = []*regexp.Regexp{
	// Baseline domain match: any path under the domain family.
	regexp.MustCompile(`(?i)^https?://(www\.)?(tiktok\.com|vm\.tiktok\.com|m\.tiktok\.com)/.*$`),
	// Canonical video path: /@handle/video/<digits>.
	regexp.MustCompile(`(?i)^https?://(www\.)?tiktok\.com/@[\w.-]+/video/\d+\??.*$`),
	// Short-link form.
	regexp.MustCompile(`(?i)^https?://vm\.tiktok\.com/\w+/?$`),
	// Mobile form: /v/<digits>.html.
	regexp.MustCompile(`(?i)^https?://m\.tiktok\.com/v/\d+\.html\??.*$`),
}

// IsValidVideoURL reports whether raw is a scrapeable TikTok video URL.
// It is a pure predicate: any input is accepted and never panics.
func IsValidVideoURL(raw string) bool {
	if raw == "" {
		return false
	}
	for _, p := range videoURLPatterns {
		if p.MatchString(raw) {
			return true
		}
	}
	return false
}

// KeyDeriver maps a raw URL string to a namespaced cache key. The raw URL
// is hashed byte-for-byte: no normalization of trailing slashes or query
// order is performed, so equivalent-looking URLs that differ textually map
// to distinct keys. Callers rely on this exact-match behavior.
type KeyDeriver struct {
	prefix string
	hasher Hasher
}

// NewKeyDeriver builds a deriver with the configured namespace prefix.
func NewKeyDeriver(prefix string, hasher Hasher) *KeyDeriver {
	if prefix == "" {
		prefix = "tiktok_scraper"
	}
	return &KeyDeriver{prefix: prefix, hasher: hasher}
}

// Key returns {prefix}:{hash(url)}. The same URL always yields the same key.
func (d *KeyDeriver) Key(url string) (string, error) {
	digest, err := d.hasher.Hash([]byte(url))
	if err != nil {
		return "", fmt.Errorf("hash cache key: %w", err)
	}
	return d.prefix + ":" + digest, nil
}
