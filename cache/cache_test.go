package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func body(s string) json.RawMessage {
	return json.RawMessage(`"` + s + `"`)
}

func TestGetMissOnEmptyStore(t *testing.T) {
	s := New(4)
	if _, ok := s.Get("/api/ponds"); ok {
		t.Fatal("expected miss on empty store")
	}
}

func TestSetThenGet(t *testing.T) {
	s := New(4)
	s.Set("/api/ponds", body("ponds"), time.Minute)

	got, ok := s.Get("/api/ponds")
	require.True(t, ok)
	require.Equal(t, body("ponds"), got)
}

func TestGetExpiredEntryIsMissAndRemoved(t *testing.T) {
	s := New(4)
	s.Set("/api/ponds", body("ponds"), 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if _, ok := s.Get("/api/ponds"); ok {
		t.Fatal("expired entry must not be served")
	}
	require.Equal(t, 0, s.Len(), "expired entry should be dropped on read")
}

func TestZeroTTLNeverExpires(t *testing.T) {
	s := New(4)
	s.Set("/api/ponds", body("ponds"), 0)
	time.Sleep(15 * time.Millisecond)

	_, ok := s.Get("/api/ponds")
	require.True(t, ok)
}

func TestLRUEvictionPrefersColdEntry(t *testing.T) {
	s := New(2)
	s.Set("A", body("a"), time.Minute)
	s.Set("B", body("b"), time.Minute)

	// Touch A so B becomes the least recently accessed entry.
	if _, ok := s.Get("A"); !ok {
		t.Fatal("A should be present")
	}

	s.Set("C", body("c"), time.Minute)

	_, okA := s.Get("A")
	_, okB := s.Get("B")
	_, okC := s.Get("C")
	require.True(t, okA, "A was touched and must survive")
	require.False(t, okB, "B was coldest and must be evicted")
	require.True(t, okC)
	require.Equal(t, 2, s.Len())
}

func TestOverwriteRefreshesEntry(t *testing.T) {
	s := New(2)
	s.Set("A", body("old"), 10*time.Millisecond)
	time.Sleep(15 * time.Millisecond)
	s.Set("A", body("new"), time.Minute)

	got, ok := s.Get("A")
	require.True(t, ok, "overwrite must reset the TTL clock")
	require.Equal(t, body("new"), got)
	require.Equal(t, 1, s.Len())
}

func TestDeleteLiteralAndWildcard(t *testing.T) {
	s := New(8)
	s.Set("/api/v1/users", body("u"), time.Minute)
	s.Set("/api/v1/posts", body("p"), time.Minute)
	s.Set("/api/v2/users", body("u2"), time.Minute)

	removed := s.Delete(ParsePattern("/api/v1/*"))
	require.Equal(t, 2, removed)

	_, ok := s.Get("/api/v2/users")
	require.True(t, ok, "v2 entry must be untouched")

	removed = s.Delete(ParsePattern("/api/v2/users"))
	require.Equal(t, 1, removed)
	require.Equal(t, 0, s.Len())
}

func TestDeleteWithoutPatternsClearsAll(t *testing.T) {
	s := New(8)
	s.Set("/api/ponds", body("p"), time.Minute)
	s.Set("/api/expenses", body("e"), time.Minute)

	removed := s.Delete()
	require.Equal(t, 2, removed)
	require.Equal(t, 0, s.Len())
}

func TestStats(t *testing.T) {
	s := New(2)
	s.Set("A", body("a"), time.Minute)

	s.Get("A")       // hit
	s.Get("missing") // miss
	s.Get("A")       // hit

	st := s.Stats()
	require.Equal(t, uint64(2), st.Hits)
	require.Equal(t, uint64(1), st.Misses)
	require.Equal(t, 1, st.Size)
	require.InDelta(t, 2.0/3.0, st.HitRate, 1e-9)
}

func TestStatsCountEvictions(t *testing.T) {
	s := New(1)
	s.Set("A", body("a"), time.Minute)
	s.Set("B", body("b"), time.Minute)

	require.Equal(t, uint64(1), s.Stats().Evictions)
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	s := New(4, WithSweepInterval(10*time.Millisecond))
	defer s.Close()

	s.Set("short", body("s"), 5*time.Millisecond)
	s.Set("long", body("l"), time.Minute)

	time.Sleep(40 * time.Millisecond)

	require.Equal(t, 1, s.Len(), "janitor should have dropped the expired entry")
	_, ok := s.Get("long")
	require.True(t, ok)
}

type countingMetrics struct {
	hits, misses, evictions, invalidated int
}

func (m *countingMetrics) Hit()               { m.hits++ }
func (m *countingMetrics) Miss()              { m.misses++ }
func (m *countingMetrics) Eviction()          { m.evictions++ }
func (m *countingMetrics) Invalidation(n int) { m.invalidated += n }

func TestMetricsSinkReceivesEvents(t *testing.T) {
	m := &countingMetrics{}
	s := New(1, WithMetrics(m))

	s.Set("A", body("a"), time.Minute)
	s.Get("A")
	s.Get("missing")
	s.Set("B", body("b"), time.Minute) // evicts A
	s.Delete(ParsePattern("B"))

	require.Equal(t, 1, m.hits)
	require.Equal(t, 1, m.misses)
	require.Equal(t, 1, m.evictions)
	require.Equal(t, 1, m.invalidated)
}
