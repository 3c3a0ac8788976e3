// Package proxy serves a local read-through caching proxy in front of
// the farm backend, plus cache introspection and prometheus endpoints.
package proxy

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/aquatrack/farmclient/farmapi"
	"github.com/aquatrack/farmclient/internal/metrics"
)

// ServerOptions carries the proxy's dependencies.
type ServerOptions struct {
	Client *farmapi.Client
	Logger zerolog.Logger
}

// Server routes proxy traffic.
type Server struct {
	Router *chi.Mux
	client *farmapi.Client
	log    zerolog.Logger
}

// New builds the router.
func New(opts ServerOptions) *Server {
	s := &Server{
		Router: chi.NewRouter(),
		client: opts.Client,
		log:    opts.Logger,
	}

	s.Router.Use(chimw.Recoverer)
	s.Router.Use(observe)

	s.Router.Get("/healthz", s.handleHealth)
	s.Router.Get("/cachez", s.handleCacheStats)
	s.Router.Delete("/cachez", s.handleCacheClear)
	s.Router.Handle("/metrics", metrics.Handler())
	s.Router.HandleFunc("/api/*", s.handleAPI)

	return s
}

// observe records request counts and latency per method and status.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		metrics.ObserveRequest(r.Method, strconv.Itoa(ww.Status()), time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.client.CacheStats())
}

// handleCacheClear clears the whole cache, or just the entries matching
// the repeated ?pattern= query parameter.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	patterns := r.URL.Query()["pattern"]
	removed := s.client.ClearCache(patterns...)
	s.log.Info().Strs("patterns", patterns).Int("removed", removed).Msg("cache cleared")
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// handleAPI forwards any /api/* request through the cached client.
// Reads are served from the cache when fresh; writes invalidate their
// collection prefix.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	params := map[string]string{}
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}

	var body any
	if r.Body != nil && r.Method != http.MethodGet {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
			return
		}
		if len(raw) > 0 {
			body = json.RawMessage(raw)
		}
	}

	var opts *farmapi.CacheOptions
	if r.Method != http.MethodGet {
		opts = &farmapi.CacheOptions{InvalidatePatterns: collectionPatterns(r.URL.Path)}
	}

	resp, err := s.client.Call(r.Context(), r.Method, r.URL.Path, params, body, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(resp)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var he *farmapi.HTTPError
	if errors.As(err, &he) {
		// Relay the backend's verdict as-is.
		writeJSON(w, he.StatusCode, map[string]string{"error": he.Body})
		return
	}

	s.log.Error().Err(err).Str("path", r.URL.Path).Msg("upstream call failed")
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
}

// collectionPatterns derives the invalidation scope for a mutation:
// the resource collection under /api plus the dashboard aggregates.
func collectionPatterns(path string) []string {
	segs := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(segs) < 2 || segs[0] != "api" {
		return nil
	}
	return []string{"/api/" + segs[1] + "*", "/api/dashboard*"}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
