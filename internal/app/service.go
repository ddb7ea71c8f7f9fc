// Package service wires the data gateway, the answer generator and the cache
// into the operations the HTTP API exposes.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/gridiron/internal/adapters/llm"
	eventqueue "github.com/okian/gridiron/internal/adapters/mq/queue"
	workerpool "github.com/okian/gridiron/internal/adapters/mq/worker"
	"github.com/okian/gridiron/internal/adapters/sportsdata"
	"github.com/okian/gridiron/internal/domain/cache"
	"github.com/okian/gridiron/internal/domain/query"
	"github.com/okian/gridiron/internal/domain/summarize"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// Cache key operations.
const (
	OpTeams          = "teams"
	OpSchedule       = "schedule"
	OpTeamProfile    = "team_profile"
	OpPlayerProfile  = "player_profile"
	OpGameBoxscore   = "game_boxscore"
	OpStandings      = "standings"
	OpWeeklyInjuries = "weekly_injuries"
)

// Freshness per read. Reference data changes rarely, live data hourly.
const (
	TTLTeams          = 24 * time.Hour
	TTLSchedule       = 12 * time.Hour
	TTLTeamProfile    = 24 * time.Hour
	TTLPlayerProfile  = 24 * time.Hour
	TTLGameBoxscore   = time.Hour
	TTLStandings      = time.Hour
	TTLWeeklyInjuries = time.Hour
)

const (
	defaultPrefetchWorkers   = 2
	defaultPrefetchQueueSize = 16
	prefetchJobTimeout       = 30 * time.Second
)

// Gateway is the upstream statistics API.
type Gateway interface {
	Teams(ctx context.Context) (map[string]any, error)
	Schedule(ctx context.Context, year, seasonType string) (map[string]any, error)
	TeamProfile(ctx context.Context, teamID string) (map[string]any, error)
	PlayerProfile(ctx context.Context, playerID string) (map[string]any, error)
	GameBoxscore(ctx context.Context, gameID string) (map[string]any, error)
	Standings(ctx context.Context, year, seasonType string) (map[string]any, error)
	WeeklyInjuries(ctx context.Context, year, seasonType, week string) (map[string]any, error)
}

// configured is implemented by adapters that can run without credentials.
type configured interface {
	Configured() bool
}

// Service implements the API dependencies for the NFL query service.
type Service struct {
	mu sync.RWMutex

	// Core components
	gateway      Gateway
	generator    query.Generator
	cache        *cache.Store
	orchestrator *query.Orchestrator

	// Configuration
	contextMaxChars   int
	defaults          query.Defaults
	sweepInterval     time.Duration
	prefetchEnabled   bool
	prefetchWorkers   int
	prefetchQueueSize int

	// State
	started  bool
	stopCh   chan struct{}
	sweeper  sync.WaitGroup
	jobs     *eventqueue.InMemoryQueue
	prefetch *workerpool.Pool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGateway sets the upstream data gateway.
func WithGateway(g Gateway) Option {
	return func(s *Service) {
		if g != nil {
			s.gateway = g
		}
	}
}

// WithGenerator sets the answer generator.
func WithGenerator(g query.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithCache injects the cache store.
func WithCache(c *cache.Store) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithContextMaxChars caps the summarized context handed to the generator.
func WithContextMaxChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.contextMaxChars = n
		}
	}
}

// WithDefaults sets the season used when a question names none. Empty
// fields keep their previous value.
func WithDefaults(d query.Defaults) Option {
	return func(s *Service) {
		if d.Year != "" {
			s.defaults.Year = d.Year
		}
		if d.SeasonType != "" {
			s.defaults.SeasonType = d.SeasonType
		}
		if d.Week != "" {
			s.defaults.Week = d.Week
		}
	}
}

// WithPrefetch enables background cache warming.
func WithPrefetch(enabled bool, workers, queueSize int) Option {
	return func(s *Service) {
		s.prefetchEnabled = enabled
		if workers > 0 {
			s.prefetchWorkers = workers
		}
		if queueSize > 0 {
			s.prefetchQueueSize = queueSize
		}
	}
}

// WithSweepInterval sets how often expired entries are pruned. Zero disables
// the sweeper; expired entries are then only evicted on access.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.sweepInterval = d
		}
	}
}

// New constructs a Service. Without a gateway every read fails with
// sportsdata.ErrNotConfigured; without a generator every answer is the
// fallback text.
func New(opts ...Option) *Service {
	s := &Service{
		gateway:           unconfiguredGateway{},
		generator:         fallbackGenerator{},
		contextMaxChars:   summarize.DefaultMaxChars,
		defaults:          query.DefaultDefaults(),
		prefetchWorkers:   defaultPrefetchWorkers,
		prefetchQueueSize: defaultPrefetchQueueSize,
		logger:            logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cache == nil {
		s.cache = cache.New()
	}

	// Reader and generator are never nil here, so New cannot fail.
	s.orchestrator, _ = query.New(s, s.generator,
		query.WithSummarizer(summarize.New(summarize.WithMaxChars(s.contextMaxChars))),
		query.WithDefaults(s.defaults),
		query.WithLogger(s.logger.Named("query")),
	)
	return s
}

// Start launches the sweeper and, when enabled, the prefetch workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting NFL query service...")
	s.stopCh = make(chan struct{})

	if s.sweepInterval > 0 {
		s.sweeper.Add(1)
		go s.sweep(ctx, s.sweepInterval, s.stopCh)
	}

	if s.prefetchEnabled {
		s.jobs = eventqueue.NewInMemoryQueue(
			eventqueue.WithCapacity(s.prefetchQueueSize),
			eventqueue.WithBufferSize(s.prefetchQueueSize),
		)
		s.prefetch = workerpool.NewPool(s.prefetchWorkers, s.jobs,
			workerpool.WithLogger(s.logger.Named("prefetch")),
			workerpool.WithJobTimeout(prefetchJobTimeout),
		)
		s.prefetch.Start(ctx)
		s.warm(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "NFL query service started",
		logger.Bool("upstream_configured", isConfigured(s.gateway)),
		logger.Bool("generator_configured", isConfigured(s.generator)),
		logger.Duration("sweep_interval", s.sweepInterval),
		logger.Bool("prefetch", s.prefetchEnabled),
	)
	return nil
}

// Stop gracefully shuts down background work. It is safe to call twice.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping NFL query service...")

	close(s.stopCh)
	s.sweeper.Wait()

	if s.prefetch != nil {
		if err := s.prefetch.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "prefetch shutdown incomplete", logger.Error(err))
		}
		s.prefetch = nil
		s.jobs = nil
	}

	s.started = false
	s.logger.Info(ctx, "NFL query service stopped")
}

func (s *Service) sweep(ctx context.Context, every time.Duration, stop <-chan struct{}) {
	defer s.sweeper.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if n := s.cache.Prune(ctx); n > 0 {
				s.logger.Debug(ctx, "pruned expired cache entries", logger.Int("count", n))
			}
		}
	}
}

// warm enqueues reads for the data most questions need. Callers hold s.mu.
func (s *Service) warm(ctx context.Context) {
	if s.jobs == nil {
		return
	}
	jobs := []eventqueue.Job{
		{Name: "warm:" + OpTeams, Run: func(ctx context.Context) error {
			_, err := s.Teams(ctx)
			return err
		}},
		{Name: "warm:" + OpSchedule, Run: func(ctx context.Context) error {
			_, err := s.Schedule(ctx, s.defaults.Year, s.defaults.SeasonType)
			return err
		}},
	}
	for _, j := range jobs {
		if !s.jobs.Enqueue(ctx, j) {
			s.logger.Warn(ctx, "prefetch job rejected", logger.String("job", j.Name))
		}
	}
}

// Answer runs the question pipeline.
func (s *Service) Answer(ctx context.Context, question string) types.AnswerResponse {
	return s.orchestrator.Answer(ctx, question)
}

// ClearCache empties the cache and returns how many entries were removed.
// With prefetch running, the warm-up reads are queued again.
func (s *Service) ClearCache(ctx context.Context) int {
	n := s.cache.Clear(ctx)
	s.logger.Info(ctx, "cache cleared", logger.Int("entries", n))

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.started {
		s.warm(ctx)
	}
	return n
}

// Teams returns the league hierarchy.
func (s *Service) Teams(ctx context.Context) (map[string]any, error) {
	return cache.Fetch(ctx, s.cache, cache.Key(OpTeams), TTLTeams,
		func(ctx context.Context) (map[string]any, error) {
			return s.gateway.Teams(ctx)
		})
}

// Schedule returns the season schedule.
func (s *Service) Schedule(ctx context.Context, year, seasonType string) (map[string]any, error) {
	st, err := sportsdata.NormalizeSeasonType(seasonType)
	if err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, cache.Key(OpSchedule, year, st), TTLSchedule,
		func(ctx context.Context) (map[string]any, error) {
			return s.gateway.Schedule(ctx, year, st)
		})
}

// TeamProfile returns a team profile and roster.
func (s *Service) TeamProfile(ctx context.Context, teamID string) (map[string]any, error) {
	return cache.Fetch(ctx, s.cache, cache.Key(OpTeamProfile, teamID), TTLTeamProfile,
		func(ctx context.Context) (map[string]any, error) {
			return s.gateway.TeamProfile(ctx, teamID)
		})
}

// PlayerProfile returns a player profile.
func (s *Service) PlayerProfile(ctx context.Context, playerID string) (map[string]any, error) {
	return cache.Fetch(ctx, s.cache, cache.Key(OpPlayerProfile, playerID), TTLPlayerProfile,
		func(ctx context.Context) (map[string]any, error) {
			return s.gateway.PlayerProfile(ctx, playerID)
		})
}

// GameBoxscore returns a game boxscore.
func (s *Service) GameBoxscore(ctx context.Context, gameID string) (map[string]any, error) {
	return cache.Fetch(ctx, s.cache, cache.Key(OpGameBoxscore, gameID), TTLGameBoxscore,
		func(ctx context.Context) (map[string]any, error) {
			return s.gateway.GameBoxscore(ctx, gameID)
		})
}

// Standings returns season standings.
func (s *Service) Standings(ctx context.Context, year, seasonType string) (map[string]any, error) {
	st, err := sportsdata.NormalizeSeasonType(seasonType)
	if err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, cache.Key(OpStandings, year, st), TTLStandings,
		func(ctx context.Context) (map[string]any, error) {
			return s.gateway.Standings(ctx, year, st)
		})
}

// WeeklyInjuries returns the injury report for one week.
func (s *Service) WeeklyInjuries(ctx context.Context, year, seasonType, week string) (map[string]any, error) {
	st, err := sportsdata.NormalizeSeasonType(seasonType)
	if err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, cache.Key(OpWeeklyInjuries, year, st, week), TTLWeeklyInjuries,
		func(ctx context.Context) (map[string]any, error) {
			return s.gateway.WeeklyInjuries(ctx, year, st, week)
		})
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs := s.cache.Stats()
	stats := map[string]any{
		"started":              s.started,
		"upstream_configured":  isConfigured(s.gateway),
		"generator_configured": isConfigured(s.generator),
		"context_max_chars":    s.contextMaxChars,
		"cache": map[string]any{
			"entries": cs.Entries,
			"hits":    cs.Hits,
			"misses":  cs.Misses,
			"expired": cs.Expired,
			"clears":  cs.Clears,
		},
	}

	prefetch := map[string]any{"enabled": s.prefetchEnabled}
	if s.prefetch != nil {
		ps := s.prefetch.Stats()
		queueLen := s.jobs.Len(context.Background())
		prefetch["workers"] = s.prefetch.Size()
		prefetch["queue_length"] = queueLen
		prefetch["processed"] = ps.Processed
		prefetch["failed"] = ps.Failed
		metrics.UpdateQueueSize(queueLen)
	}
	stats["prefetch"] = prefetch

	metrics.UpdateCacheEntries(cs.Entries)
	return stats
}

func isConfigured(v any) bool {
	c, ok := v.(configured)
	return !ok || c.Configured()
}

// unconfiguredGateway stands in when no gateway is supplied.
type unconfiguredGateway struct{}

func (unconfiguredGateway) Configured() bool { return false }

func (unconfiguredGateway) err(op string) error {
	return &sportsdata.Error{Endpoint: op, Kind: sportsdata.ErrNotConfigured,
		Err: fmt.Errorf("%s: no gateway", op)}
}

func (g unconfiguredGateway) Teams(context.Context) (map[string]any, error) {
	return nil, g.err(OpTeams)
}

func (g unconfiguredGateway) Schedule(context.Context, string, string) (map[string]any, error) {
	return nil, g.err(OpSchedule)
}

func (g unconfiguredGateway) TeamProfile(context.Context, string) (map[string]any, error) {
	return nil, g.err(OpTeamProfile)
}

func (g unconfiguredGateway) PlayerProfile(context.Context, string) (map[string]any, error) {
	return nil, g.err(OpPlayerProfile)
}

func (g unconfiguredGateway) GameBoxscore(context.Context, string) (map[string]any, error) {
	return nil, g.err(OpGameBoxscore)
}

func (g unconfiguredGateway) Standings(context.Context, string, string) (map[string]any, error) {
	return nil, g.err(OpStandings)
}

func (g unconfiguredGateway) WeeklyInjuries(context.Context, string, string, string) (map[string]any, error) {
	return nil, g.err(OpWeeklyInjuries)
}

// fallbackGenerator stands in when no generator is supplied.
type fallbackGenerator struct{}

func (fallbackGenerator) Configured() bool { return false }

func (fallbackGenerator) Generate(context.Context, string, string) string {
	return llm.FallbackAnswer
}
