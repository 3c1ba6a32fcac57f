package sinks_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/haianibrahim/tiktok-scraper/internal/events"
	"github.com/haianibrahim/tiktok-scraper/internal/events/sinks"
	"github.com/haianibrahim/tiktok-scraper/internal/scrapelog"
)

type fakeWriter struct {
	mu      sync.Mutex
	records []scrapelog.Record
	closed  bool
}

func (w *fakeWriter) StoreAttempt(_ context.Context, record scrapelog.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, record)
	return nil
}

func (w *fakeWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

func TestScrapeLogSinkMapsEvents(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	sink := sinks.NewScrapeLogSink(writer, zap.NewNop())
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	batch := []events.Event{
		{
			Type:     events.TypeScraped,
			TS:       ts,
			URL:      "https://www.tiktok.com/@u/video/1",
			VideoID:  "1",
			Username: "u",
			Dur:      250 * time.Millisecond,
		},
		{
			Type:     events.TypeScraped,
			TS:       ts,
			URL:      "https://www.tiktok.com/@u/video/1",
			VideoID:  "1",
			CacheHit: true,
		},
		{
			Type:      events.TypeFailed,
			TS:        ts,
			URL:       "https://www.tiktok.com/@u/video/2",
			ErrorKind: "structure",
			Note:      "not a valid video page",
		},
		{
			Type: events.TypeRateLimited,
			TS:   ts,
			URL:  "https://www.tiktok.com/@u/video/3",
		},
	}
	require.NoError(t, sink.Consume(context.Background(), batch))

	require.Len(t, writer.records, 4)

	success := writer.records[0]
	assert.NotEmpty(t, success.ID)
	assert.Equal(t, scrapelog.StatusSuccess, success.Status)
	assert.Equal(t, "1", success.VideoID)
	assert.Equal(t, int64(250), success.ResponseTimeMs)
	assert.False(t, success.FromCache)
	assert.Equal(t, ts, success.CreatedAt)

	cached := writer.records[1]
	assert.Equal(t, scrapelog.StatusSuccess, cached.Status)
	assert.True(t, cached.FromCache)

	failed := writer.records[2]
	assert.Equal(t, scrapelog.StatusFailed, failed.Status)
	assert.Equal(t, "structure", failed.ErrorCode)
	assert.Equal(t, "not a valid video page", failed.ErrorMessage)

	limited := writer.records[3]
	assert.Equal(t, scrapelog.StatusFailed, limited.Status)
	assert.Equal(t, "rate_limited", limited.ErrorCode)

	require.NoError(t, sink.Close(context.Background()))
	assert.True(t, writer.closed)
}

func TestPrometheusSinkCounts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := sinks.NewPrometheusSink(reg)
	require.NoError(t, err)

	ts := time.Now()
	batch := []events.Event{
		{Type: events.TypeScraped, TS: ts, URL: "u1", VideoID: "1", Dur: time.Second},
		{Type: events.TypeScraped, TS: ts, URL: "u1", VideoID: "1", CacheHit: true},
		{Type: events.TypeFailed, TS: ts, URL: "u2", ErrorKind: "network"},
		{Type: events.TypeRateLimited, TS: ts, URL: "u3"},
	}
	require.NoError(t, sink.Consume(context.Background(), batch))

	assert.Equal(t, float64(1), counterValue(t, reg, "tiktok_scraper_cache_hits_total"))
	assert.Equal(t, float64(1), counterValue(t, reg, "tiktok_scraper_rate_limit_hits_total"))
	assert.ElementsMatch(t,
		[]string{"cache_hit", "failed", "rate_limited", "success"},
		outcomeLabels(t, reg, "tiktok_scraper_scrapes_total"),
	)
}

func outcomeLabels(t *testing.T, reg *prometheus.Registry, name string) []string {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var labels []string
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" {
					labels = append(labels, lp.GetValue())
				}
			}
		}
	}
	return labels
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() == name {
			return fam.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestPrometheusSinkDoubleRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := sinks.NewPrometheusSink(reg)
	require.NoError(t, err)
	_, err = sinks.NewPrometheusSink(reg)
	assert.Error(t, err, "the registry rejects duplicate collectors")
}

func TestLogSinkWritesStructuredEntries(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	sink := sinks.NewLogSink(zap.New(core))

	batch := []events.Event{
		{Type: events.TypeScraped, TS: time.Now(), URL: "u", VideoID: "1", Username: "john"},
	}
	require.NoError(t, sink.Consume(context.Background(), batch))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "scrape event", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "SCRAPED", fields["type"])
	assert.Equal(t, "1", fields["video_id"])
}

func TestMemorySinkRecordsAndCloses(t *testing.T) {
	t.Parallel()

	sink := sinks.NewMemorySink()
	batch := []events.Event{{Type: events.TypeRateLimited, TS: time.Now(), URL: "u"}}
	require.NoError(t, sink.Consume(context.Background(), batch))
	require.NoError(t, sink.Close(context.Background()))

	assert.Len(t, sink.Events(), 1)
	assert.True(t, sink.Closed())
}
