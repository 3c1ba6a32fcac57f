// Package api exposes the HTTP interface for the scraper service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/haianibrahim/tiktok-scraper/internal/config"
	"github.com/haianibrahim/tiktok-scraper/internal/metrics"
	"github.com/haianibrahim/tiktok-scraper/internal/scraper"
)

// VideoService is the slice of the scrape service the HTTP layer uses.
type VideoService interface {
	Scrape(ctx context.Context, url string, useCache bool) (scraper.VideoRecord, error)
	ScrapeMultiple(ctx context.Context, urls []string, useCache bool) []scraper.VideoRecord
	GetCachedDetails(ctx context.Context, url string) (scraper.VideoRecord, bool)
	ClearCache(ctx context.Context, url string) bool
	IsValidVideoURL(url string) bool
	Statistics() scraper.Statistics
	RecentActivity() []scraper.Activity
}

// Server wires HTTP handlers to the scrape service.
type Server struct {
	router     chi.Router
	service    VideoService
	clientGate scraper.Gate
	logger     *zap.Logger
	cfg        config.Config
}

// NewServer constructs a Server with middleware and routes. clientGate may
// be nil when per-client limiting is disabled.
func NewServer(service VideoService, clientGate scraper.Gate, logger *zap.Logger, cfg config.Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service:    service,
		clientGate: clientGate,
		logger:     logger,
		cfg:        cfg,
	}
	metrics.Init()
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metricsMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		if cfg.Server.AuthAPIKey != "" {
			r.Use(apiKeyMiddleware(cfg.Server.AuthAPIKey))
		}
		if cfg.Server.PerClientRateLimit && clientGate != nil {
			r.Use(s.clientRateLimitMiddleware)
		}
		r.Post("/scrape", s.scrape)
		r.Post("/scrape/bulk", s.scrapeBulk)
		r.Post("/validate", s.validate)
		r.Route("/cache", func(r chi.Router) {
			r.Get("/", s.getCached)
			r.Delete("/", s.clearCache)
		})
		r.Get("/stats", s.stats)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type scrapeRequest struct {
	URL      string `json:"url"`
	UseCache *bool  `json:"use_cache"`
}

type bulkScrapeRequest struct {
	URLs     []string `json:"urls"`
	UseCache *bool    `json:"use_cache"`
}

type validateRequest struct {
	URL string `json:"url"`
}

func (s *Server) scrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url required")
		return
	}
	record, err := s.service.Scrape(r.Context(), req.URL, boolOrDefault(req.UseCache, true))
	if err != nil {
		s.writeScrapeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"video": record})
}

func (s *Server) scrapeBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "at least one URL required")
		return
	}
	records := s.service.ScrapeMultiple(r.Context(), req.URLs, boolOrDefault(req.UseCache, true))
	writeJSON(w, http.StatusOK, map[string]any{
		"requested": len(req.URLs),
		"scraped":   len(records),
		"videos":    records,
	})
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"url":   req.URL,
		"valid": s.service.IsValidVideoURL(req.URL),
	})
}

func (s *Server) getCached(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url query parameter required")
		return
	}
	record, ok := s.service.GetCachedDetails(r.Context(), url)
	if !ok {
		writeError(w, http.StatusNotFound, "no cached details for url")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"video": record, "cache_hit": true})
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	cleared := s.service.ClearCache(r.Context(), url)
	writeJSON(w, http.StatusOK, map[string]any{"cleared": cleared})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	snapshot := s.service.Statistics()
	payload := map[string]any{"statistics": snapshot}
	if r.URL.Query().Get("activity") == "true" {
		payload["recent_activity"] = s.service.RecentActivity()
	}
	writeJSON(w, http.StatusOK, payload)
}

// writeScrapeError maps the error taxonomy onto HTTP statuses. Upstream
// trouble surfaces as 502, malformed pages as 422. The body always carries
// an error_code so callers can branch on the failure class even where
// statuses collapse several kinds.
func (s *Server) writeScrapeError(w http.ResponseWriter, err error) {
	kind := scraper.KindOf(err)
	status := http.StatusInternalServerError
	code := "internal"
	if kind != "" {
		code = string(kind)
	}
	switch kind {
	case scraper.KindInvalidURL:
		status = http.StatusBadRequest
	case scraper.KindRateLimited:
		status = http.StatusTooManyRequests
		var se *scraper.Error
		if errors.As(err, &se) && se.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(se.RetryAfter.Seconds()+0.5)))
		}
	case scraper.KindNetwork, scraper.KindEmptyBody:
		status = http.StatusBadGateway
	case scraper.KindPayloadNotFound, scraper.KindDecode, scraper.KindStructure:
		status = http.StatusUnprocessableEntity
	}
	writeErrorCode(w, status, err.Error(), code)
}

func (s *Server) clientRateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "client:" + clientIP(r)
		decision := s.clientGate.Admit(key, s.cfg.RateLimit.MaxAttempts, s.cfg.RateLimit.Window())
		if !decision.OK {
			w.Header().Set("Retry-After", strconv.Itoa(int(decision.RetryAfter.Seconds()+0.5)))
			writeErrorCode(w, http.StatusTooManyRequests, "too many requests", string(scraper.KindRateLimited))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func boolOrDefault(ptr *bool, def bool) bool {
	if ptr == nil {
		return def
	}
	return *ptr
}
