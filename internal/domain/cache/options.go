package cache

import "time"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithClock replaces time.Now, mostly so tests can move time forward.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSingleFlight toggles collapsing of concurrent misses on the same key.
// When disabled, concurrent misses each compute and the last write wins.
func WithSingleFlight(enabled bool) Option {
	return func(s *Store) {
		s.singleFlight = enabled
	}
}
