package sinks

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haianibrahim/tiktok-scraper/internal/events"
	"github.com/haianibrahim/tiktok-scraper/internal/scrapelog"
)

// ScrapeLogSink persists one audit row per terminal event.
type ScrapeLogSink struct {
	writer scrapelog.Writer
	logger *zap.Logger
}

// NewScrapeLogSink wires an audit-row writer to the sink interface.
func NewScrapeLogSink(writer scrapelog.Writer, logger *zap.Logger) *ScrapeLogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScrapeLogSink{writer: writer, logger: logger}
}

// Consume writes each event as one row. A failed insert aborts the batch so
// the hub can log it; rows are best-effort and never block scraping.
func (s *ScrapeLogSink) Consume(ctx context.Context, batch []events.Event) error {
	for _, evt := range batch {
		record := scrapelog.Record{
			ID:             uuid.NewString(),
			URL:            evt.URL,
			VideoID:        evt.VideoID,
			Username:       evt.Username,
			Status:         scrapelog.StatusSuccess,
			ResponseTimeMs: evt.Dur.Milliseconds(),
			Requester:      evt.Requester,
			FromCache:      evt.CacheHit,
			CreatedAt:      evt.TS,
		}
		switch evt.Type {
		case events.TypeFailed:
			record.Status = scrapelog.StatusFailed
			record.ErrorCode = evt.ErrorKind
			record.ErrorMessage = evt.Note
		case events.TypeRateLimited:
			record.Status = scrapelog.StatusFailed
			record.ErrorCode = "rate_limited"
		}
		if err := s.writer.StoreAttempt(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying writer.
func (s *ScrapeLogSink) Close(context.Context) error {
	s.writer.Close()
	return nil
}
