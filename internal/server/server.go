package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"accbridge/internal/acc"
	"accbridge/pkg/logging"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// issueCacheTTL is how long a fetched issue page is served before the
// upstream API is asked again. Dashboards refresh on this cadence anyway.
const issueCacheTTL = 5 * time.Minute

// IssueSource fetches the issue page served by the API.
type IssueSource interface {
	FetchIssues(ctx context.Context) ([]acc.Issue, error)
}

// TokenStatus reports cache state for one token class without exposing
// the token value.
type TokenStatus interface {
	Status() (cached bool, expiresAt time.Time)
}

// Config configures the API server.
type Config struct {
	Host string
	Port int

	Issues      IssueSource
	TwoLegged   TokenStatus
	ThreeLegged TokenStatus
}

// Server exposes issue data and token status over HTTP for Power BI.
type Server struct {
	cfg     Config
	metrics *Metrics
	http    *http.Server

	mu          sync.Mutex
	cached      []acc.Issue
	lastFetched time.Time
}

// New creates the API server.
func New(cfg Config) *Server {
	s := &Server{
		cfg:     cfg,
		metrics: NewMetrics(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/issues", s.handleIssues)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Server", "API server listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Handler returns the configured HTTP handler; used by tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleIssues(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "true"

	issues, fromCache, err := s.issues(r.Context(), refresh)
	if err != nil {
		s.metrics.fetchErrors.Inc()
		status := http.StatusBadGateway
		if errors.Is(err, acc.ErrUnauthorized) {
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	if fromCache {
		s.metrics.cacheHits.Inc()
	}
	s.metrics.issuesServed.Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"issues":    issues,
		"count":     len(issues),
		"fetchedAt": s.fetchedAt().UTC().Format(time.RFC3339),
	})
}

// issues returns the cached page when fresh, fetching otherwise.
func (s *Server) issues(ctx context.Context, refresh bool) ([]acc.Issue, bool, error) {
	s.mu.Lock()
	if !refresh && s.cached != nil && time.Since(s.lastFetched) < issueCacheTTL {
		issues := s.cached
		s.mu.Unlock()
		return issues, true, nil
	}
	s.mu.Unlock()

	issues, err := s.cfg.Issues.FetchIssues(ctx)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	s.cached = issues
	s.lastFetched = time.Now()
	s.mu.Unlock()

	return issues, false, nil
}

func (s *Server) fetchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFetched
}

type tokenStatusPayload struct {
	Cached    bool   `json:"cached"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	payload := map[string]tokenStatusPayload{
		"twoLegged":   statusPayload(s.cfg.TwoLegged),
		"threeLegged": statusPayload(s.cfg.ThreeLegged),
	}
	writeJSON(w, http.StatusOK, payload)
}

func statusPayload(ts TokenStatus) tokenStatusPayload {
	if ts == nil {
		return tokenStatusPayload{}
	}
	cached, expiresAt := ts.Status()
	payload := tokenStatusPayload{Cached: cached}
	if cached {
		payload.ExpiresAt = expiresAt.UTC().Format(time.RFC3339)
	}
	return payload
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	// Power BI's web connector runs from another origin.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
