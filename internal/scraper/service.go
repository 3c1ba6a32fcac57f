package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/haianibrahim/tiktok-scraper/internal/events"
	"github.com/haianibrahim/tiktok-scraper/internal/payload"
)

// Config controls Service behavior.
type Config struct {
	CacheEnabled     bool
	CacheTTL         time.Duration
	CachePrefix      string
	RateLimitEnabled bool
	RateLimitKey     string
	MaxAttempts      int
	Window           time.Duration
	Timeout          time.Duration
	ConnectTimeout   time.Duration
	Headers          http.Header
	SnapshotPrefix   string
	MaxConcurrency   int
}

func (c *Config) applyDefaults() {
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	if c.CachePrefix == "" {
		c.CachePrefix = "tiktok_scraper"
	}
	if c.RateLimitKey == "" {
		c.RateLimitKey = "tiktok_scraper_rate_limit"
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 60
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.SnapshotPrefix == "" {
		c.SnapshotPrefix = "snapshots"
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 4
	}
}

// Service composes the fetch, locate, parse, and extract steps into the
// public scrape operations. All collaborators are injected; the service
// holds no global state of its own.
type Service struct {
	fetcher   Fetcher
	cache     CacheStore
	gate      Gate
	stats     StatsStore
	emitter   events.Emitter
	keys      *KeyDeriver
	clock     Clock
	snapshots BlobStore
	logger    *zap.Logger
	cfg       Config
}

// New constructs a Service. snapshots may be nil to disable raw-HTML
// archival; emitter and logger fall back to no-ops when nil.
func New(
	fetcher Fetcher,
	cache CacheStore,
	gate Gate,
	stats StatsStore,
	emitter events.Emitter,
	hasher Hasher,
	clock Clock,
	snapshots BlobStore,
	logger *zap.Logger,
	cfg Config,
) *Service {
	cfg.applyDefaults()
	if emitter == nil {
		emitter = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher:   fetcher,
		cache:     cache,
		gate:      gate,
		stats:     stats,
		emitter:   emitter,
		keys:      NewKeyDeriver(cfg.CachePrefix, hasher),
		clock:     clock,
		snapshots: snapshots,
		logger:    logger,
		cfg:       cfg,
	}
}

// IsValidVideoURL exposes the URL classifier on the service surface.
func (s *Service) IsValidVideoURL(url string) bool {
	return IsValidVideoURL(url)
}

// Scrape runs the full pipeline for one URL: validate, rate-check, cache
// lookup, fetch/locate/parse/extract, cache store. Every call increments
// the total-requests counter exactly once, regardless of outcome.
func (s *Service) Scrape(ctx context.Context, url string, useCache bool) (VideoRecord, error) {
	s.stats.Increment(CounterTotalRequests)
	start := s.clock.Now()

	if !IsValidVideoURL(url) {
		err := NewInvalidURLError(url)
		s.stats.Increment(CounterFailedScrapes)
		s.recordActivity(url, OutcomeFailed, err)
		return VideoRecord{}, err
	}

	if s.cfg.RateLimitEnabled {
		decision := s.gate.Admit(s.cfg.RateLimitKey, s.cfg.MaxAttempts, s.cfg.Window)
		if !decision.OK {
			err := NewRateLimitError(url, decision.RetryAfter)
			s.stats.Increment(CounterRateLimitHits)
			s.recordActivity(url, OutcomeRateLimited, err)
			s.emitter.Emit(events.Event{
				Type:       events.TypeRateLimited,
				TS:         s.clock.Now(),
				URL:        url,
				RetryAfter: decision.RetryAfter,
			})
			return VideoRecord{}, err
		}
	}

	if s.cfg.CacheEnabled && useCache {
		if record, ok := s.lookupCache(ctx, url); ok {
			s.stats.Increment(CounterCacheHits)
			s.recordActivity(url, OutcomeCacheHit, nil)
			s.emitter.Emit(events.Event{
				Type:     events.TypeScraped,
				TS:       s.clock.Now(),
				URL:      url,
				VideoID:  record.VideoID,
				Username: record.Username,
				CacheHit: true,
				Dur:      s.clock.Now().Sub(start),
			})
			return record, nil
		}
	}

	record, err := s.doScrape(ctx, url)
	if err != nil {
		s.stats.Increment(CounterFailedScrapes)
		s.recordActivity(url, OutcomeFailed, err)
		s.emitter.Emit(events.Event{
			Type:      events.TypeFailed,
			TS:        s.clock.Now(),
			URL:       url,
			ErrorKind: string(KindOf(err)),
			Note:      err.Error(),
			Dur:       s.clock.Now().Sub(start),
		})
		s.logger.Error("scraping failed",
			zap.String("url", url),
			zap.String("error_kind", string(KindOf(err))),
			zap.Error(err),
		)
		return VideoRecord{}, err
	}

	if s.cfg.CacheEnabled {
		s.storeCache(ctx, url, record)
	}

	s.stats.Increment(CounterSuccessfulScrapes)
	s.recordActivity(url, OutcomeSuccess, nil)
	s.emitter.Emit(events.Event{
		Type:     events.TypeScraped,
		TS:       s.clock.Now(),
		URL:      url,
		VideoID:  record.VideoID,
		Username: record.Username,
		Dur:      s.clock.Now().Sub(start),
	})
	s.logger.Info("video scraped successfully",
		zap.String("url", url),
		zap.String("video_id", record.VideoID),
		zap.String("username", record.Username),
	)
	return record, nil
}

// ScrapeMultiple applies the single-URL state machine to each URL, fanning
// out up to MaxConcurrency workers. Individual failures are dropped; the
// returned records preserve the relative order of the successful inputs.
func (s *Service) ScrapeMultiple(ctx context.Context, urls []string, useCache bool) []VideoRecord {
	slots := make([]*VideoRecord, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrency)
	for i, url := range urls {
		g.Go(func() error {
			record, err := s.Scrape(gctx, url, useCache)
			if err != nil {
				// Continue with other URLs even if one fails.
				return nil
			}
			slots[i] = &record
			return nil
		})
	}
	_ = g.Wait()

	results := make([]VideoRecord, 0, len(urls))
	for _, slot := range slots {
		if slot != nil {
			results = append(results, *slot)
		}
	}
	return results
}

// GetCachedDetails returns the cached record for url, if present. It never
// touches the network.
func (s *Service) GetCachedDetails(ctx context.Context, url string) (VideoRecord, bool) {
	if !s.cfg.CacheEnabled {
		return VideoRecord{}, false
	}
	return s.lookupCache(ctx, url)
}

// ClearCache removes the cached entry for url, or flushes the whole
// namespace when url is empty. Clearing for an invalid URL fails rather
// than silently doing nothing.
func (s *Service) ClearCache(ctx context.Context, url string) bool {
	if !s.cfg.CacheEnabled {
		return false
	}
	if url == "" {
		s.cache.Flush(ctx)
		return true
	}
	if !IsValidVideoURL(url) {
		return false
	}
	key, err := s.keys.Key(url)
	if err != nil {
		return false
	}
	return s.cache.Forget(ctx, key)
}

// Statistics returns a snapshot of the process counters.
func (s *Service) Statistics() Statistics {
	return s.stats.Snapshot()
}

// RecentActivity returns the most recent terminal outcomes, newest last.
func (s *Service) RecentActivity() []Activity {
	return s.stats.RecentActivity()
}

// doScrape runs fetch, locate, parse, and extract in strict sequence; the
// first failure short-circuits the remaining steps.
func (s *Service) doScrape(ctx context.Context, url string) (VideoRecord, error) {
	response, err := s.fetcher.Fetch(ctx, FetchRequest{
		URL:            url,
		Headers:        s.cfg.Headers,
		Timeout:        s.cfg.Timeout,
		ConnectTimeout: s.cfg.ConnectTimeout,
	})
	if err != nil {
		if KindOf(err) != "" {
			return VideoRecord{}, err
		}
		return VideoRecord{}, NewNetworkError(url, err)
	}

	s.storeSnapshot(ctx, url, response.Body)

	text, err := payload.Locate(string(response.Body))
	if err != nil {
		return VideoRecord{}, NewPayloadNotFoundError(url, err)
	}

	tree, err := payload.Parse(text)
	if err != nil {
		return VideoRecord{}, NewDecodeError(url, err)
	}

	return Extract(tree, url, []byte(text), s.clock.Now())
}

func (s *Service) lookupCache(ctx context.Context, url string) (VideoRecord, bool) {
	key, err := s.keys.Key(url)
	if err != nil {
		return VideoRecord{}, false
	}
	data, ok := s.cache.Get(ctx, key)
	if !ok {
		return VideoRecord{}, false
	}
	var record VideoRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// A corrupt entry behaves as a miss; the re-scrape overwrites it.
		s.logger.Warn("discarding undecodable cache entry", zap.String("url", url), zap.Error(err))
		return VideoRecord{}, false
	}
	return record, true
}

func (s *Service) storeCache(ctx context.Context, url string, record VideoRecord) {
	key, err := s.keys.Key(url)
	if err != nil {
		s.logger.Warn("cache key derivation failed", zap.String("url", url), zap.Error(err))
		return
	}
	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Warn("cache encode failed", zap.String("url", url), zap.Error(err))
		return
	}
	s.cache.Put(ctx, key, data, s.cfg.CacheTTL)
}

func (s *Service) storeSnapshot(ctx context.Context, url string, body []byte) {
	if s.snapshots == nil {
		return
	}
	digest, err := s.keys.hasher.Hash([]byte(url))
	if err != nil {
		return
	}
	path := fmt.Sprintf("%s/%s.html", s.cfg.SnapshotPrefix, digest)
	if _, err := s.snapshots.PutObject(ctx, path, "text/html; charset=utf-8", body); err != nil {
		s.logger.Warn("snapshot store failed", zap.String("url", url), zap.Error(err))
	}
}

func (s *Service) recordActivity(url string, outcome Outcome, err error) {
	entry := Activity{URL: url, Outcome: outcome, TS: s.clock.Now()}
	if err != nil {
		entry.Error = err.Error()
	}
	s.stats.AppendActivity(entry)
}
