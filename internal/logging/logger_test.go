package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haianibrahim/tiktok-scraper/internal/logging"
)

func TestNewDisabledReturnsNop(t *testing.T) {
	t.Parallel()

	logger, err := logging.New(false, true)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("ignored") })
}

func TestNewBuildsBothModes(t *testing.T) {
	t.Parallel()

	dev, err := logging.New(true, true)
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(-1), "development logger keeps debug level")

	prod, err := logging.New(true, false)
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(-1), "production logger drops debug level")
}
