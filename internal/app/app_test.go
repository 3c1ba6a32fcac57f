package app

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haianibrahim/tiktok-scraper/internal/scrapelog"
)

// When startup fails after the audit store exists but before the event hub
// does, Close must release the pool directly instead of relying on the
// hub's sink teardown.
func TestCloseReleasesAuditStoreWithoutHub(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	mock.ExpectClose()

	store, err := scrapelog.NewStoreWithPool(mock, "tiktok_scraper_logs")
	require.NoError(t, err)

	a := &App{Logger: zap.NewNop(), logStore: store}
	a.Close(context.Background())

	require.NoError(t, mock.ExpectationsWereMet())
}
