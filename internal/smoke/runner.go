package smoke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/gridiron/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

const (
	defaultWorkers = 2
	defaultTimeout = 60 * time.Second
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMalformedAnswer  = errors.New("malformed answer")
	ErrFailedQuestions  = errors.New("questions failed")
)

// Run executes the complete smoke test.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	cfg := withDefaults(config)
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("smoke")

	log.Info(ctx, "starting gridiron smoke test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("questions", len(cfg.Questions)),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.checkHealth(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is healthy")

	// Step 2: Start from a cold cache when asked to
	if cfg.ClearFirst {
		n, err := client.clearCache(ctx)
		if err != nil {
			return stats, fmt.Errorf("cache clear failed: %w", err)
		}
		stats.Cleared = n
		log.Info(ctx, "cache cleared", logger.Int("entries", n))
	}

	// Step 3: Ask every question, round after round. Later rounds should be
	// served from the service cache.
	var results []Result
	for round := 1; round <= cfg.Rounds; round++ {
		rs, err := askAll(ctx, client, cfg, round)
		if err != nil {
			return stats, err
		}
		results = append(results, rs...)
		log.Info(ctx, "round complete",
			logger.Int("round", round),
			logger.Duration("slowest", slowest(rs)),
		)
	}

	// Step 4: Verify answers
	verifyResults(ctx, cfg, results, stats)

	// Step 5: Save answers
	if cfg.OutputFile != "" {
		if err := saveResults(cfg.OutputFile, results); err != nil {
			log.Warn(ctx, "failed to save results", logger.Error(err))
		} else {
			log.Info(ctx, "results saved", logger.String("filename", cfg.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrFailedQuestions, stats.Failed, stats.Asked)
	}
	log.Info(ctx, "smoke test completed successfully")
	return stats, nil
}

func withDefaults(in *Config) Config {
	cfg := Config{}
	if in != nil {
		cfg = *in
	}
	if len(cfg.Questions) == 0 {
		cfg.Questions = DefaultQuestions()
	}
	if cfg.Rounds < 1 {
		cfg.Rounds = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

// askAll asks each question once with at most cfg.Workers in flight.
// Individual failures are recorded in the results, not returned.
func askAll(ctx context.Context, client *HTTPClient, cfg Config, round int) ([]Result, error) {
	results := make([]Result, len(cfg.Questions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for i, q := range cfg.Questions {
		g.Go(func() error {
			start := time.Now()
			status, ans, err := client.ask(gctx, q)
			r := Result{Round: round, Question: q, Status: status, Answer: ans, Latency: time.Since(start)}
			if err != nil {
				r.Error = err.Error()
			}
			results[i] = r
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("round %d interrupted: %w", round, err)
	}
	return results, nil
}

func slowest(rs []Result) time.Duration {
	var worst time.Duration
	for _, r := range rs {
		if r.Latency > worst {
			worst = r.Latency
		}
	}
	return worst
}

// saveResults writes the answers as a JSON array.
func saveResults(filename string, results []Result) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Named("smoke").Info(ctx, "final statistics",
		logger.Int("asked", stats.Asked),
		logger.Int("answered", stats.Answered),
		logger.Int("fallbacks", stats.Fallbacks),
		logger.Int("failed", stats.Failed),
		logger.Int("cleared", stats.Cleared),
		logger.Duration("duration", stats.Duration),
	)
}
