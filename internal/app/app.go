// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/pubsub"
	gcstorage "cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	cachememory "github.com/haianibrahim/tiktok-scraper/internal/cache/memory"
	systemclock "github.com/haianibrahim/tiktok-scraper/internal/clock/system"
	"github.com/haianibrahim/tiktok-scraper/internal/config"
	"github.com/haianibrahim/tiktok-scraper/internal/events"
	"github.com/haianibrahim/tiktok-scraper/internal/events/sinks"
	"github.com/haianibrahim/tiktok-scraper/internal/fetcher"
	collyfetcher "github.com/haianibrahim/tiktok-scraper/internal/fetcher/colly"
	sha256hash "github.com/haianibrahim/tiktok-scraper/internal/hash/sha256"
	"github.com/haianibrahim/tiktok-scraper/internal/logging"
	"github.com/haianibrahim/tiktok-scraper/internal/metrics"
	"github.com/haianibrahim/tiktok-scraper/internal/ratelimit"
	"github.com/haianibrahim/tiktok-scraper/internal/scrapelog"
	"github.com/haianibrahim/tiktok-scraper/internal/scraper"
	"github.com/haianibrahim/tiktok-scraper/internal/storage/gcs"
	statsmemory "github.com/haianibrahim/tiktok-scraper/internal/stats/memory"
)

// App holds all the shared, long-lived services for the application. It is
// initialized once at startup and passed to the commands that need it.
type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Service *scraper.Service

	// ClientGate rate-limits API callers by requester key; nil when the
	// per-client limit is disabled.
	ClientGate scraper.Gate

	cache    *cachememory.Store
	hub      *events.Hub
	logStore *scrapelog.Store
	pubsub   *pubsub.Client
	gcs      *gcstorage.Client
}

// New wires the full object graph from configuration. It fails fast when a
// configured backend cannot be reached.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Enabled, cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.Init()

	clock := systemclock.New()
	hasher := sha256hash.New()

	cache := cachememory.NewStore(clock)
	cache.StartJanitor(time.Minute)

	stats := statsmemory.NewStore(cfg.Scrape.ActivityRingSize)
	gate := ratelimit.NewWindow(clock, cfg.RateLimit.Window())

	a := &App{
		Config: cfg,
		Logger: logger,
		cache:  cache,
	}
	if cfg.Server.PerClientRateLimit {
		a.ClientGate = ratelimit.NewWindow(clock, cfg.RateLimit.Window())
	}

	var base scraper.Fetcher = collyfetcher.New(collyfetcher.Config{
		UserAgent:      cfg.HTTP.UserAgent,
		Timeout:        cfg.HTTP.Timeout(),
		ConnectTimeout: cfg.HTTP.ConnectTimeout(),
	})
	if cfg.Outbound.RPS > 0 {
		pacer := ratelimit.NewPacer(ratelimit.PacerConfig{RPS: cfg.Outbound.RPS, Burst: cfg.Outbound.Burst})
		base = fetcher.NewPaced(base, pacer)
	}
	if cfg.HTTP.Retries > 1 {
		base = fetcher.NewRetrying(base, cfg.HTTP.Retries, cfg.HTTP.RetryDelay())
	}

	var snapshots scraper.BlobStore
	if cfg.Storage.SnapshotsEnabled {
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("init storage client: %w", err)
		}
		a.gcs = client
		snapshots, err = gcs.New(client, gcs.Config{Bucket: cfg.Storage.GCSBucket})
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("init snapshot store: %w", err)
		}
	}

	var emitter events.Emitter = events.Nop{}
	if cfg.Events.Enabled {
		hubSinks, err := a.buildSinks(ctx, cfg, logger)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.hub = events.NewHub(events.Config{Logger: logger, BaseContext: ctx}, hubSinks...)
		emitter = a.hub
	}

	a.Service = scraper.New(
		base,
		cache,
		gate,
		stats,
		emitter,
		hasher,
		clock,
		snapshots,
		logger,
		scraper.Config{
			CacheEnabled:     cfg.Cache.Enabled,
			CacheTTL:         cfg.Cache.TTL(),
			CachePrefix:      cfg.Cache.Prefix,
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimitKey:     cfg.RateLimit.Prefix,
			MaxAttempts:      cfg.RateLimit.MaxAttempts,
			Window:           cfg.RateLimit.Window(),
			Timeout:          cfg.HTTP.Timeout(),
			ConnectTimeout:   cfg.HTTP.ConnectTimeout(),
			Headers:          headersFromMap(cfg.HTTP.Headers),
			SnapshotPrefix:   cfg.Storage.Prefix,
			MaxConcurrency:   cfg.Scrape.MaxConcurrency,
		},
	)

	logger.Info("application services initialized",
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("events", cfg.Events.Enabled),
		zap.Bool("snapshots", cfg.Storage.SnapshotsEnabled),
	)
	return a, nil
}

func (a *App) buildSinks(ctx context.Context, cfg config.Config, logger *zap.Logger) ([]events.Sink, error) {
	hubSinks := []events.Sink{sinks.NewLogSink(logger)}

	promSink, err := sinks.NewPrometheusSink(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("init prometheus sink: %w", err)
	}
	hubSinks = append(hubSinks, promSink)

	if cfg.DB.DSN != "" {
		store, err := scrapelog.NewStore(ctx, scrapelog.StoreConfig{DSN: cfg.DB.DSN, Table: cfg.DB.Table})
		if err != nil {
			return nil, fmt.Errorf("init audit store: %w", err)
		}
		a.logStore = store
		hubSinks = append(hubSinks, sinks.NewScrapeLogSink(store, logger))
	}

	if cfg.PubSub.TopicName != "" {
		client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("init pubsub client: %w", err)
		}
		a.pubsub = client
		pubSink, err := sinks.NewPubSubSink(client.Topic(cfg.PubSub.TopicName))
		if err != nil {
			return nil, fmt.Errorf("init pubsub sink: %w", err)
		}
		hubSinks = append(hubSinks, pubSink)
	}

	return hubSinks, nil
}

// Close gracefully shuts down all services in the container. The hub is
// drained first so in-flight events still reach the audit and pubsub sinks.
func (a *App) Close(ctx context.Context) {
	if a.hub != nil {
		if err := a.hub.Close(ctx); err != nil {
			a.Logger.Warn("event hub close failed", zap.Error(err))
		}
	} else if a.logStore != nil {
		// The hub owns the audit sink and closes the store through it; when
		// startup failed before the hub existed, release the pool here.
		a.logStore.Close()
	}
	if a.cache != nil {
		a.cache.Stop()
	}
	if a.pubsub != nil {
		if err := a.pubsub.Close(); err != nil {
			a.Logger.Warn("pubsub client close failed", zap.Error(err))
		}
	}
	if a.gcs != nil {
		if err := a.gcs.Close(); err != nil {
			a.Logger.Warn("storage client close failed", zap.Error(err))
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

func headersFromMap(m map[string]string) http.Header {
	if len(m) == 0 {
		return nil
	}
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}
