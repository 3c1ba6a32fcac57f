package system_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/haianibrahim/tiktok-scraper/internal/clock/system"
)

func TestNowTracksWallClock(t *testing.T) {
	t.Parallel()

	c := system.New()
	before := time.Now()
	got := c.Now()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}
