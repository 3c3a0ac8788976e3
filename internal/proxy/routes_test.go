package proxy

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aquatrack/farmclient/cache"
	"github.com/aquatrack/farmclient/farmapi"
)

func newProxy(t *testing.T, backend *httptest.Server) *Server {
	t.Helper()
	client, err := farmapi.New(backend.URL, farmapi.WithCache(cache.New(16), time.Minute))
	require.NoError(t, err)
	return New(ServerOptions{Client: client, Logger: zerolog.Nop()})
}

func TestProxyServesAndCachesReads(t *testing.T) {
	var calls atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `[{"id":"p1"}]`)
	}))
	defer backend.Close()

	srv := newProxy(t, backend)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		srv.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ponds", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `[{"id":"p1"}]`, rec.Body.String())
	}

	require.Equal(t, int32(1), calls.Load(), "repeat reads must be served from cache")
}

func TestProxyMutationInvalidatesCollection(t *testing.T) {
	var listCalls atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			listCalls.Add(1)
		}
		fmt.Fprint(w, `[]`)
	}))
	defer backend.Close()

	srv := newProxy(t, backend)

	get := func() {
		rec := httptest.NewRecorder()
		srv.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ponds", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	get()
	get() // cached

	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/ponds", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	get() // must refetch
	require.Equal(t, int32(2), listCalls.Load())
}

func TestProxyRelaysBackendErrors(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such pond", http.StatusNotFound)
	}))
	defer backend.Close()

	srv := newProxy(t, backend)

	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ponds/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProxyReportsBadGatewayOnTransportFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // refuse connections

	srv := newProxy(t, backend)

	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ponds", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCacheStatsAndClearEndpoints(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer backend.Close()

	srv := newProxy(t, backend)

	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ponds", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/cachez", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"size":1`)

	rec = httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/cachez?pattern=/api/ponds*", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"removed":1`)
}

func TestCollectionPatterns(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/ponds", "/api/ponds*"},
		{"/api/ponds/p1", "/api/ponds*"},
		{"/api/inventory/i9/adjust", "/api/inventory*"},
	}
	for _, tt := range tests {
		got := collectionPatterns(tt.path)
		if len(got) == 0 || got[0] != tt.want {
			t.Errorf("collectionPatterns(%q) = %v, want first %q", tt.path, got, tt.want)
		}
	}
	if got := collectionPatterns("/healthz"); got != nil {
		t.Errorf("non-API path should have no patterns, got %v", got)
	}
}
