// Package llm generates natural-language answers through an
// OpenAI-compatible chat completions backend.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// FallbackAnswer is returned whenever generation cannot complete.
const FallbackAnswer = "Sorry, I couldn't process your request at the moment."

// SystemPrompt frames every answer.
const SystemPrompt = "You are an NFL analytics expert providing insights based on official NFL data. " +
	"Focus on providing accurate, data-driven analysis in a conversational tone. " +
	"When responding:\n" +
	"1. Summarize key information from the data\n" +
	"2. Provide relevant statistics\n" +
	"3. Offer context about teams, players, or matchups\n" +
	"4. Cite your sources as 'Based on official NFL data.'"

// ContextPreamble precedes the summarized data in the auxiliary system message.
const ContextPreamble = "Here is the relevant NFL data:\n"

// Config holds backend settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client answers questions. A Client without an API key is valid and always
// returns FallbackAnswer.
type Client struct {
	cfg    Config
	api    *openai.Client
	logger logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a Client. Retries are disabled; a failed call degrades
// to FallbackAnswer immediately.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	c := &Client{cfg: cfg, logger: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}

	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return c
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		// Paths are resolved relative to the base, so it must end in a slash.
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimRight(base, "/")+"/"))
	}
	api := openai.NewClient(reqOpts...)
	c.api = &api
	return c
}

// Configured reports whether an API key was supplied.
func (c *Client) Configured() bool { return c.api != nil }

// Messages builds the prompt for question. An empty context adds no
// auxiliary message.
func Messages(question, contextText string) []openai.ChatCompletionMessageParamUnion {
	msgs := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(SystemPrompt)}
	if contextText != "" {
		msgs = append(msgs, openai.SystemMessage(ContextPreamble+contextText))
	}
	return append(msgs, openai.UserMessage(question))
}

// Generate returns the model's answer, or FallbackAnswer on any failure.
func (c *Client) Generate(ctx context.Context, question, contextText string) string {
	start := time.Now()
	if c.api == nil {
		metrics.RecordGeneratorRequest("not_configured", 0)
		c.logger.Warn(ctx, "generator api key missing, returning fallback")
		return FallbackAnswer
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var callOpts []option.RequestOption
	if id := logger.RequestID(ctx); id != "" {
		callOpts = append(callOpts, option.WithHeader("X-Request-ID", id))
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Messages:    Messages(question, contextText),
		Temperature: openai.Float(c.cfg.Temperature),
		MaxTokens:   openai.Int(int64(c.cfg.MaxTokens)),
	}, callOpts...)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		outcome := classify(err)
		metrics.RecordGeneratorRequest(outcome, elapsed)
		c.logger.Error(ctx, "generation failed",
			logger.String("outcome", outcome),
			logger.Error(err),
		)
		return FallbackAnswer
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.RecordGeneratorRequest("empty", elapsed)
		c.logger.Warn(ctx, "generation returned no content")
		return FallbackAnswer
	}

	metrics.RecordGeneratorRequest("ok", elapsed)
	c.logger.Debug(ctx, "generation complete",
		logger.Duration("took", time.Since(start)),
		logger.Int("choices", len(resp.Choices)),
	)
	return resp.Choices[0].Message.Content
}

func classify(err error) string {
	var apiErr *openai.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &apiErr):
		return "status_" + statusClass(apiErr.StatusCode)
	default:
		return "transport"
	}
}

func statusClass(code int) string {
	switch {
	case code == 401 || code == 403:
		return "auth"
	case code == 429:
		return "rate_limited"
	case code >= 500:
		return "5xx"
	default:
		return "4xx"
	}
}
