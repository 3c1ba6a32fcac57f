package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/haianibrahim/tiktok-scraper/internal/events"
)

// PrometheusSink exports scrape outcome metrics via Prometheus. It owns all
// collectors for attempt counts and latencies.
type PrometheusSink struct {
	scrapes       *prometheus.CounterVec
	cacheHits     prometheus.Counter
	rateLimitHits prometheus.Counter
	duration      *prometheus.HistogramVec
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		scrapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tiktok_scraper_scrapes_total",
			Help: "Scrape attempts partitioned by outcome.",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tiktok_scraper_cache_hits_total",
			Help: "Scrapes served from cache without a network fetch.",
		}),
		rateLimitHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tiktok_scraper_rate_limit_hits_total",
			Help: "Requests rejected by the admission gate.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tiktok_scraper_scrape_duration_seconds",
			Help:    "End-to-end scrape latency partitioned by outcome.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"outcome"}),
	}
	for _, collector := range []prometheus.Collector{
		s.scrapes,
		s.cacheHits,
		s.rateLimitHits,
		s.duration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register event collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors using the provided batch. It is
// safe for concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []events.Event) error {
	for _, evt := range batch {
		switch evt.Type {
		case events.TypeScraped:
			outcome := "success"
			if evt.CacheHit {
				outcome = "cache_hit"
				s.cacheHits.Inc()
			}
			s.scrapes.WithLabelValues(outcome).Inc()
			s.duration.WithLabelValues(outcome).Observe(evt.Dur.Seconds())
		case events.TypeFailed:
			s.scrapes.WithLabelValues("failed").Inc()
			s.duration.WithLabelValues("failed").Observe(evt.Dur.Seconds())
		case events.TypeRateLimited:
			s.rateLimitHits.Inc()
			s.scrapes.WithLabelValues("rate_limited").Inc()
		}
	}
	return nil
}

// Close implements the Sink interface; collectors stay registered.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
