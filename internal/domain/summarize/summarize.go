// Package summarize reduces raw NFL payloads to a bounded text context
// suitable for a generation prompt.
//
// Reduction happens in two stages: a shape-specific structural reduction
// (see Detect) followed by a hard byte ceiling on the serialized text.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/okian/gridiron/pkg/metrics"
)

const (
	// DefaultMaxChars is the default byte ceiling of Summary.Text.
	DefaultMaxChars = 20_000
	// MinMaxChars is the smallest accepted ceiling.
	MinMaxChars = 64

	// TruncationMarker terminates text that was cut at the ceiling.
	TruncationMarker = "...[additional data truncated for size]"
	// FallbackMarker replaces the context when reduction itself failed.
	FallbackMarker = "[context summarization failed]"
)

// Bundle is the raw input to a summary: an upstream payload, or the error
// that prevented fetching it.
type Bundle struct {
	Payload map[string]any
	Err     error
}

// Failure builds the bundle used in place of data that could not be fetched.
func Failure(err error) Bundle {
	return Bundle{Err: err}
}

// Summary is a size-bounded reduction of a Bundle.
type Summary struct {
	Shape     Shape
	Data      map[string]any
	Text      string
	Truncated bool
}

// Summarizer turns bundles into summaries.
type Summarizer struct {
	maxChars int
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithMaxChars sets the byte ceiling for Summary.Text. Values below
// MinMaxChars are raised to it; non-positive values keep the default.
func WithMaxChars(n int) Option {
	return func(s *Summarizer) {
		if n <= 0 {
			return
		}
		s.maxChars = max(n, MinMaxChars)
	}
}

// New returns a Summarizer.
func New(opts ...Option) *Summarizer {
	s := &Summarizer{maxChars: DefaultMaxChars}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxChars returns the configured ceiling.
func (s *Summarizer) MaxChars() int { return s.maxChars }

// Summarize never fails. A panic or encoding failure while reducing yields
// a ShapeFallback summary carrying FallbackMarker.
func (s *Summarizer) Summarize(_ context.Context, b Bundle) (out Summary) {
	defer func() {
		if r := recover(); r != nil {
			out = fallback(fmt.Sprint(r))
		}
		metrics.RecordSummary(string(out.Shape), len(out.Text), out.Truncated)
	}()

	shape, data := reduce(b)
	text, err := encode(data)
	if err != nil {
		return fallback(err.Error())
	}
	text, truncated := s.truncate(text)
	return Summary{Shape: shape, Data: data, Text: text, Truncated: truncated}
}

func reduce(b Bundle) (Shape, map[string]any) {
	if b.Err != nil {
		return ShapeError, map[string]any{"error": b.Err.Error()}
	}
	shape := Detect(b.Payload)
	switch shape {
	case ShapeTeams:
		return shape, reduceTeams(b.Payload)
	case ShapeLeague:
		return shape, reduceLeague(b.Payload)
	case ShapeSchedule:
		return shape, reduceSchedule(b.Payload)
	case ShapeInjuries:
		return shape, reduceInjuries(b.Payload)
	default:
		return ShapeGeneric, reduceGeneric(b.Payload)
	}
}

func fallback(reason string) Summary {
	metrics.RecordErrorByType("summarize_failed", "low")
	data := map[string]any{"note": FallbackMarker, "reason": reason}
	text, err := encode(data)
	if err != nil {
		text = FallbackMarker
	}
	return Summary{Shape: ShapeFallback, Data: data, Text: text}
}

// encode writes compact JSON without HTML escaping.
func encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// truncate cuts text on a rune boundary so that text plus marker fits the ceiling.
func (s *Summarizer) truncate(text string) (string, bool) {
	if len(text) <= s.maxChars {
		return text, false
	}
	keep := s.maxChars - len(TruncationMarker)
	for keep > 0 && !utf8.RuneStart(text[keep]) {
		keep--
	}
	return text[:keep] + TruncationMarker, true
}
