package smoke

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/gridiron/pkg/logger"
)

// verifyResults checks each exchange and fills stats. An answer is well
// formed when it echoes the question, has text and names at least one data
// source. The fallback text still counts as answered; it is tallied apart so
// a run without generator credentials is visible.
func verifyResults(ctx context.Context, cfg Config, results []Result, stats *Stats) {
	log := logger.Named("smoke")
	for _, r := range results {
		stats.Asked++
		if r.Error != "" {
			stats.Failed++
			log.Warn(ctx, "question failed",
				logger.String("question", r.Question),
				logger.Int("status", r.Status),
				logger.String("error", r.Error),
			)
			continue
		}
		if err := checkAnswer(r); err != nil {
			stats.Failed++
			log.Warn(ctx, "malformed answer", logger.String("question", r.Question), logger.Error(err))
			continue
		}
		stats.Answered++
		if r.Answer.Answer == FallbackAnswer {
			stats.Fallbacks++
		}
		if cfg.Verbose {
			log.Info(ctx, "answer",
				logger.Int("round", r.Round),
				logger.String("question", r.Question),
				logger.String("answer", r.Answer.Answer),
				logger.Any("data_sources", r.Answer.DataSources),
				logger.Duration("latency", r.Latency),
			)
		}
	}
}

func checkAnswer(r Result) error {
	switch {
	case r.Answer.Query != strings.TrimSpace(r.Question):
		return fmt.Errorf("%w: query echoed as %q", ErrMalformedAnswer, r.Answer.Query)
	case strings.TrimSpace(r.Answer.Answer) == "":
		return fmt.Errorf("%w: empty answer", ErrMalformedAnswer)
	case len(r.Answer.DataSources) == 0:
		return fmt.Errorf("%w: no data sources", ErrMalformedAnswer)
	}
	return nil
}
