package scrapelog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haianibrahim/tiktok-scraper/internal/scrapelog"
)

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *scrapelog.Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	store, err := scrapelog.NewStoreWithPool(mock, "tiktok_scraper_logs")
	require.NoError(t, err)
	return mock, store
}

func TestStoreAttemptSuccessRow(t *testing.T) {
	t.Parallel()

	mock, store := newMockStore(t)
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO tiktok_scraper_logs").
		WithArgs(
			"row-1",
			"https://www.tiktok.com/@u/video/1",
			"1",
			"u",
			scrapelog.StatusSuccess,
			nil,
			nil,
			int64(120),
			nil,
			false,
			created,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.StoreAttempt(context.Background(), scrapelog.Record{
		ID:             "row-1",
		URL:            "https://www.tiktok.com/@u/video/1",
		VideoID:        "1",
		Username:       "u",
		Status:         scrapelog.StatusSuccess,
		ResponseTimeMs: 120,
		CreatedAt:      created,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreAttemptFailedRowKeepsErrorColumns(t *testing.T) {
	t.Parallel()

	mock, store := newMockStore(t)
	created := time.Now()

	mock.ExpectExec("INSERT INTO tiktok_scraper_logs").
		WithArgs(
			"row-2",
			"https://www.tiktok.com/@u/video/2",
			nil,
			nil,
			scrapelog.StatusFailed,
			"not a valid video page",
			"structure",
			int64(0),
			"10.0.0.1",
			false,
			created,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.StoreAttempt(context.Background(), scrapelog.Record{
		ID:           "row-2",
		URL:          "https://www.tiktok.com/@u/video/2",
		Status:       scrapelog.StatusFailed,
		ErrorMessage: "not a valid video page",
		ErrorCode:    "structure",
		Requester:    "10.0.0.1",
		CreatedAt:    created,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreAttemptValidation(t *testing.T) {
	t.Parallel()

	_, store := newMockStore(t)

	err := store.StoreAttempt(context.Background(), scrapelog.Record{Status: scrapelog.StatusSuccess})
	assert.ErrorContains(t, err, "record id is required")

	err = store.StoreAttempt(context.Background(), scrapelog.Record{ID: "x", Status: "weird"})
	assert.ErrorContains(t, err, "invalid status")
}

func TestStoreAttemptPropagatesDBError(t *testing.T) {
	t.Parallel()

	mock, store := newMockStore(t)
	mock.ExpectExec("INSERT INTO tiktok_scraper_logs").
		WillReturnError(errors.New("connection lost"))

	err := store.StoreAttempt(context.Background(), scrapelog.Record{
		ID:        "row-3",
		URL:       "u",
		Status:    scrapelog.StatusSuccess,
		CreatedAt: time.Now(),
	})
	assert.ErrorContains(t, err, "connection lost")
}

func TestNewStoreWithPoolRejectsBadTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	_, err = scrapelog.NewStoreWithPool(mock, "logs; DROP TABLE users")
	assert.ErrorContains(t, err, "invalid table name")
}

func TestStoreClose(t *testing.T) {
	t.Parallel()

	mock, store := newMockStore(t)
	mock.ExpectClose()
	store.Close()
	require.NoError(t, mock.ExpectationsWereMet())
}
