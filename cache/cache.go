// Package cache provides an in-memory store for API response bodies with
// per-entry TTL expiry, LRU eviction and pattern-based invalidation.
package cache

import (
	"encoding/json"
	"sync"
	"time"
)

// DefaultCapacity is used when a Store is created with capacity <= 0.
const DefaultCapacity = 512

// Entry is a cached response body plus the bookkeeping the store needs
// to enforce TTL and recency. Entries are owned by the Store; callers
// only ever see the body.
type Entry struct {
	Key            string          `json:"key"`
	Body           json.RawMessage `json:"body"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	TTL            time.Duration   `json:"ttl"`
}

func (e *Entry) expired(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.CreatedAt) > e.TTL
}

// Metrics receives store events. Implementations must be safe for
// concurrent use.
type Metrics interface {
	Hit()
	Miss()
	Eviction()
	Invalidation(removed int)
}

// NoopMetrics is the default Metrics sink.
type NoopMetrics struct{}

func (NoopMetrics) Hit()             {}
func (NoopMetrics) Miss()            {}
func (NoopMetrics) Eviction()        {}
func (NoopMetrics) Invalidation(int) {}

// Stats is a point-in-time snapshot of store effectiveness.
type Stats struct {
	Size      int     `json:"size"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	Evictions uint64  `json:"evictions"`
}

// node wires an entry into the recency list. head is most recently used,
// tail is the next eviction candidate.
type node struct {
	entry *Entry
	prev  *node
	next  *node
}

// Store holds entries up to a fixed capacity, evicting the least
// recently accessed entry when full. All methods are safe for
// concurrent use; entry state is only mutated under the store lock.
type Store struct {
	mu       sync.Mutex
	items    map[string]*node
	head     *node
	tail     *node
	capacity int

	hits      uint64
	misses    uint64
	evictions uint64

	metrics Metrics

	sweepEvery time.Duration
	stopSweep  chan struct{}
	sweepOnce  sync.Once
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics attaches a metrics sink to the store.
func WithMetrics(m Metrics) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSweepInterval starts a background janitor that removes expired
// entries every d. Without it expired entries are only dropped when
// read. The janitor is stopped by Close.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) { s.sweepEvery = d }
}

// New creates a Store bounded to capacity entries.
func New(capacity int, opts ...Option) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &Store{
		items:    make(map[string]*node, capacity),
		capacity: capacity,
		metrics:  NoopMetrics{},
	}
	for _, o := range opts {
		o(s)
	}
	if s.sweepEvery > 0 {
		s.stopSweep = make(chan struct{})
		go s.sweepLoop()
	}
	return s
}

// Get returns the body stored under key. A hit refreshes the entry's
// recency; an expired entry is removed and reported as a miss.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[key]
	if !ok {
		s.misses++
		s.metrics.Miss()
		return nil, false
	}

	now := time.Now()
	if n.entry.expired(now) {
		s.removeLocked(n)
		s.misses++
		s.metrics.Miss()
		return nil, false
	}

	n.entry.LastAccessedAt = now
	s.moveToFront(n)
	s.hits++
	s.metrics.Hit()
	return n.entry.Body, true
}

// Set inserts or overwrites the entry under key. ttl <= 0 means the
// entry never expires (it can still be evicted). When the store is over
// capacity the entry with the oldest access time is evicted.
func (s *Store) Set(key string, body json.RawMessage, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if n, ok := s.items[key]; ok {
		n.entry.Body = body
		n.entry.CreatedAt = now
		n.entry.LastAccessedAt = now
		n.entry.TTL = ttl
		s.moveToFront(n)
		return
	}

	n := &node{entry: &Entry{
		Key:            key,
		Body:           body,
		CreatedAt:      now,
		LastAccessedAt: now,
		TTL:            ttl,
	}}
	s.items[key] = n
	s.addToFront(n)

	for len(s.items) > s.capacity {
		s.evictOldest()
	}
}

// Delete removes every entry matched by any of the patterns and returns
// how many were removed. With no patterns the store is cleared.
func (s *Store) Delete(patterns ...Pattern) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(patterns) == 0 {
		removed := len(s.items)
		s.items = make(map[string]*node, s.capacity)
		s.head, s.tail = nil, nil
		s.metrics.Invalidation(removed)
		return removed
	}

	removed := 0
	for key, n := range s.items {
		for _, p := range patterns {
			if p.Match(key) {
				s.removeLocked(n)
				removed++
				break
			}
		}
	}
	s.metrics.Invalidation(removed)
	return removed
}

// Len returns the current number of entries, counting entries that have
// expired but not yet been swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Stats returns a snapshot of hit/miss counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Size:      len(s.items),
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
	}
	if total := s.hits + s.misses; total > 0 {
		st.HitRate = float64(s.hits) / float64(total)
	}
	return st
}

// Close stops the background janitor if one is running. The store
// remains usable afterwards.
func (s *Store) Close() {
	if s.stopSweep == nil {
		return
	}
	s.sweepOnce.Do(func() { close(s.stopSweep) })
}

func (s *Store) sweepLoop() {
	t := time.NewTicker(s.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.sweep()
		case <-s.stopSweep:
			return
		}
	}
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, n := range s.items {
		if n.entry.expired(now) {
			s.removeLocked(n)
		}
	}
}

func (s *Store) evictOldest() {
	if s.tail == nil {
		return
	}
	s.removeLocked(s.tail)
	s.evictions++
	s.metrics.Eviction()
}

func (s *Store) removeLocked(n *node) {
	s.unlink(n)
	delete(s.items, n.entry.Key)
}

func (s *Store) addToFront(n *node) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

func (s *Store) moveToFront(n *node) {
	if s.head == n {
		return
	}
	s.unlink(n)
	s.addToFront(n)
}

func (s *Store) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev = nil
	n.next = nil
}
