// Package cache memoizes expensive reads for a bounded time.
//
// Entries are keyed by an operation name plus its normalized arguments (see
// Key) and expire once their age reaches the ttl chosen at the call site.
// Expired entries are dropped lazily on lookup and by Prune.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/gridiron/pkg/metrics"
)

// ErrTypeMismatch is returned by Fetch when a cached value has an unexpected type.
var ErrTypeMismatch = errors.New("cached value type mismatch")

// Entry is a single memoized result.
type Entry struct {
	Key       string
	CreatedAt time.Time
	Value     any
	TTL       time.Duration
}

// Expired reports whether the entry is stale at now.
func (e *Entry) Expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) >= e.TTL
}

// Stats is a point-in-time view of store counters.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Expired int64 `json:"expired"`
	Clears  int64 `json:"clears"`
}

// ComputeFunc produces the value for a missing key.
type ComputeFunc func(ctx context.Context) (any, error)

// Store is a process-local, concurrency-safe memoization table.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	gen     uint64 // bumped by Clear

	now          func() time.Time
	singleFlight bool
	sf           singleflight.Group

	hits    atomic.Int64
	misses  atomic.Int64
	expired atomic.Int64
	clears  atomic.Int64
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:      make(map[string]*Entry),
		now:          time.Now,
		singleFlight: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key derives a deterministic cache key from an operation name and its
// arguments. Arguments are JSON encoded, so map arguments contribute their
// keys in sorted order and string arguments cannot run into each other.
func Key(operation string, args ...any) string {
	if args == nil {
		args = []any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%s:%#v", operation, args)
	}
	return operation + ":" + string(raw)
}

// operationOf returns the metric label for a key built by Key.
func operationOf(key string) string {
	op, _, _ := strings.Cut(key, ":")
	return op
}

// GetOrCompute returns the live value for key, or runs compute, stores its
// result for ttl and returns it. Errors from compute are returned as-is and
// never stored. A ttl <= 0 disables storing for that call. A result computed
// across a Clear is returned to its callers but not stored.
//
// With single-flight on, concurrent misses share one compute that runs on a
// context detached from any caller's cancellation; each caller still stops
// waiting when its own ctx is done.
func (s *Store) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	op := operationOf(key)

	if v, ok := s.lookup(key, op); ok {
		s.hits.Add(1)
		metrics.RecordCacheHit(op)
		return v, nil
	}

	s.misses.Add(1)
	metrics.RecordCacheMiss(op)

	gen := s.generation()
	load := func(ctx context.Context) (any, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		s.store(key, v, ttl, gen)
		return v, nil
	}

	if !s.singleFlight {
		return load(ctx)
	}

	// The shared call outlives any single caller; the compute's own timeout
	// bounds it. Keys are scoped to the generation so callers arriving after
	// Clear never join a pre-clear call.
	shared := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(fmt.Sprintf("%d/%s", gen, key), func() (any, error) {
		return load(shared)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// lookup returns a live value and evicts the entry if it has expired.
func (s *Store) lookup(key, op string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.Expired(s.now()) {
		return e.Value, true
	}

	s.mu.Lock()
	// Another goroutine may have refreshed the key in between.
	if cur, ok := s.entries[key]; ok && cur == e {
		delete(s.entries, key)
		s.expired.Add(1)
		metrics.RecordCacheExpired(op)
	}
	n := len(s.entries)
	s.mu.Unlock()
	metrics.UpdateCacheEntries(n)
	return nil, false
}

// store writes v unless a Clear happened since gen was read.
func (s *Store) store(key string, v any, ttl time.Duration, gen uint64) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.entries[key] = &Entry{Key: key, CreatedAt: s.now(), Value: v, TTL: ttl}
	n := len(s.entries)
	s.mu.Unlock()
	metrics.UpdateCacheEntries(n)
}

// Clear drops every entry regardless of age and returns how many were removed.
func (s *Store) Clear(_ context.Context) int {
	s.mu.Lock()
	n := len(s.entries)
	s.entries = make(map[string]*Entry)
	s.gen++
	s.mu.Unlock()

	s.clears.Add(1)
	metrics.RecordCacheClear()
	metrics.UpdateCacheEntries(0)
	return n
}

// Prune drops expired entries and returns how many were removed.
func (s *Store) Prune(_ context.Context) int {
	now := s.now()
	removed := 0

	s.mu.Lock()
	for k, e := range s.entries {
		if e.Expired(now) {
			delete(s.entries, k)
			removed++
			metrics.RecordCacheExpired(operationOf(k))
		}
	}
	n := len(s.entries)
	s.mu.Unlock()

	s.expired.Add(int64(removed))
	metrics.UpdateCacheEntries(n)
	return removed
}

// Len returns the number of stored entries, live or not yet pruned.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns current counters.
func (s *Store) Stats() Stats {
	return Stats{
		Entries: s.Len(),
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Expired: s.expired.Load(),
		Clears:  s.clears.Load(),
	}
}

// Fetch is the typed form of GetOrCompute.
func Fetch[T any](ctx context.Context, s *Store, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := s.GetOrCompute(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return compute(ctx)
	})
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", ErrTypeMismatch, key, v)
	}
	return t, nil
}
