// Package query answers natural-language NFL questions.
//
// One question runs one pipeline, strictly in order: classify, fetch one
// dataset, summarize it, generate the answer, assemble the response. A
// failed fetch becomes a degraded context rather than an error, so Answer
// always returns a well-formed response.
package query

import (
	"context"
	"errors"
	"time"

	"github.com/okian/gridiron/internal/domain/intent"
	"github.com/okian/gridiron/internal/domain/summarize"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// Reader is the subset of the data gateway the pipeline uses. The
// implementation supplied in production is already cached.
type Reader interface {
	Teams(ctx context.Context) (map[string]any, error)
	Schedule(ctx context.Context, year, seasonType string) (map[string]any, error)
	WeeklyInjuries(ctx context.Context, year, seasonType, week string) (map[string]any, error)
}

// Generator produces the answer text. It must not fail; implementations
// return their own fallback text instead.
type Generator interface {
	Generate(ctx context.Context, question, contextText string) string
}

var (
	ErrNilReader    = errors.New("query: reader is required")
	ErrNilGenerator = errors.New("query: generator is required")
)

// Defaults fill parameters a question does not name.
type Defaults struct {
	Year       string
	SeasonType string
	Week       string
}

// DefaultDefaults returns the season used when nothing else is configured.
func DefaultDefaults() Defaults {
	return Defaults{Year: "2023", SeasonType: "REG", Week: "1"}
}

var dataSources = map[intent.Kind][]string{ //nolint:gochecknoglobals // read-only lookup table
	intent.PlayerRankings: {"NFL team and player data"},
	intent.Matchups:       {"NFL schedule data"},
	intent.Injuries:       {"NFL injury reports"},
	intent.Schedule:       {"NFL team schedules"},
	intent.DepthChart:     {"NFL team rosters"},
	intent.General:        {"NFL general data"},
}

// DataSources returns the labels reported for an intent. They describe the
// intent, not what was actually fetched.
func DataSources(k intent.Kind) []string {
	src, ok := dataSources[k]
	if !ok {
		return []string{"NFL API data"}
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Orchestrator runs the question pipeline.
type Orchestrator struct {
	reader     Reader
	generator  Generator
	classifier *intent.Classifier
	summarizer *summarize.Summarizer
	defaults   Defaults
	logger     logger.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClassifier replaces the intent classifier.
func WithClassifier(c *intent.Classifier) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.classifier = c
		}
	}
}

// WithSummarizer replaces the context summarizer.
func WithSummarizer(s *summarize.Summarizer) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.summarizer = s
		}
	}
}

// WithDefaults overrides the default season parameters. Empty fields keep
// their previous value.
func WithDefaults(d Defaults) Option {
	return func(o *Orchestrator) {
		if d.Year != "" {
			o.defaults.Year = d.Year
		}
		if d.SeasonType != "" {
			o.defaults.SeasonType = d.SeasonType
		}
		if d.Week != "" {
			o.defaults.Week = d.Week
		}
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New builds an Orchestrator.
func New(reader Reader, generator Generator, opts ...Option) (*Orchestrator, error) {
	if reader == nil {
		return nil, ErrNilReader
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	o := &Orchestrator{
		reader:     reader,
		generator:  generator,
		classifier: intent.New(),
		summarizer: summarize.New(),
		defaults:   DefaultDefaults(),
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Answer runs the pipeline for question.
func (o *Orchestrator) Answer(ctx context.Context, question string) types.AnswerResponse {
	start := time.Now()
	defer func() {
		metrics.RecordQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	in := o.classifier.Classify(question)
	metrics.RecordQueryIntent(string(in.Kind))

	bundle := o.fetch(ctx, in)
	sum := o.summarizer.Summarize(ctx, bundle)
	answer := o.generator.Generate(ctx, question, sum.Text)

	o.logger.Info(ctx, "question answered",
		logger.String("intent", string(in.Kind)),
		logger.String("shape", string(sum.Shape)),
		logger.Bool("truncated", sum.Truncated),
		logger.Int("context_chars", len(sum.Text)),
		logger.Duration("took", time.Since(start)),
	)

	return types.AnswerResponse{
		Query:       question,
		Answer:      answer,
		DataSources: DataSources(in.Kind),
	}
}

// fetch resolves the intent to exactly one read. Failures are returned as
// a failure bundle.
func (o *Orchestrator) fetch(ctx context.Context, in intent.Intent) summarize.Bundle {
	var (
		payload map[string]any
		err     error
	)
	switch in.Kind {
	case intent.Matchups, intent.Schedule:
		payload, err = o.reader.Schedule(ctx, o.defaults.Year, o.defaults.SeasonType)
	case intent.Injuries:
		payload, err = o.reader.WeeklyInjuries(ctx,
			in.Param(intent.ParamYear, o.defaults.Year), o.defaults.SeasonType, o.defaults.Week)
	default:
		payload, err = o.reader.Teams(ctx)
	}
	if err != nil {
		metrics.RecordQueryDegraded(degradedCause(err))
		o.logger.Warn(ctx, "fetch failed, answering with degraded context",
			logger.String("intent", string(in.Kind)),
			logger.Error(err),
		)
		return summarize.Failure(err)
	}
	return summarize.Bundle{Payload: payload}
}

// causer is implemented by gateway errors that carry a stable cause label.
type causer interface {
	Cause() string
}

func degradedCause(err error) string {
	var c causer
	switch {
	case errors.As(err, &c):
		return c.Cause()
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "fetch_failed"
	}
}
