// Package sportsdata reads NFL reference and live data from the upstream
// statistics API. Every read returns the decoded JSON document as a map.
package sportsdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

const defaultMaxBodyBytes = 16 << 20

// Config holds connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is the upstream gateway.
type Client struct {
	baseURL      string
	apiKey       string
	http         *http.Client
	maxBodyBytes int64
	logger       logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// NewClient builds a Client. Missing credentials are not an error here;
// reads fail with ErrNotConfigured instead.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		http:         &http.Client{Timeout: timeout},
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether both base URL and API key are set.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

var (
	yearPattern = regexp.MustCompile(`^\d{4}$`)
	weekPattern = regexp.MustCompile(`^\d{1,2}$`)
)

// NormalizeSeasonType upper-cases and validates a season type.
func NormalizeSeasonType(s string) (string, error) {
	st := strings.ToUpper(strings.TrimSpace(s))
	switch st {
	case "REG", "PRE", "PST":
		return st, nil
	default:
		return "", fmt.Errorf("%w: season type %q must be REG, PRE or PST", ErrInvalidArgument, s)
	}
}

func checkYear(year string) error {
	if !yearPattern.MatchString(year) {
		return fmt.Errorf("%w: year %q must have four digits", ErrInvalidArgument, year)
	}
	return nil
}

func checkWeek(week string) error {
	if !weekPattern.MatchString(week) || week == "0" || week == "00" {
		return fmt.Errorf("%w: week %q must be a positive number", ErrInvalidArgument, week)
	}
	return nil
}

func checkID(kind, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "/?#") {
		return "", fmt.Errorf("%w: %s id %q", ErrInvalidArgument, kind, id)
	}
	return url.PathEscape(id), nil
}

// Teams returns the league hierarchy: conferences, divisions and teams.
func (c *Client) Teams(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "teams", "en/league/hierarchy")
}

// Schedule returns the season schedule.
func (c *Client) Schedule(ctx context.Context, year, seasonType string) (map[string]any, error) {
	st, err := NormalizeSeasonType(seasonType)
	if err != nil {
		return nil, err
	}
	if err := checkYear(year); err != nil {
		return nil, err
	}
	return c.get(ctx, "schedule", fmt.Sprintf("en/games/%s/%s/schedule", year, st))
}

// TeamProfile returns a single team with its roster.
func (c *Client) TeamProfile(ctx context.Context, teamID string) (map[string]any, error) {
	id, err := checkID("team", teamID)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, "team_profile", fmt.Sprintf("en/teams/%s/profile", id))
}

// PlayerProfile returns a single player.
func (c *Client) PlayerProfile(ctx context.Context, playerID string) (map[string]any, error) {
	id, err := checkID("player", playerID)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, "player_profile", fmt.Sprintf("en/players/%s/profile", id))
}

// GameBoxscore returns the live or final boxscore of a game.
func (c *Client) GameBoxscore(ctx context.Context, gameID string) (map[string]any, error) {
	id, err := checkID("game", gameID)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, "boxscore", fmt.Sprintf("en/games/%s/boxscore", id))
}

// Standings returns season standings.
func (c *Client) Standings(ctx context.Context, year, seasonType string) (map[string]any, error) {
	st, err := NormalizeSeasonType(seasonType)
	if err != nil {
		return nil, err
	}
	if err := checkYear(year); err != nil {
		return nil, err
	}
	return c.get(ctx, "standings", fmt.Sprintf("en/seasons/%s/%s/standings/season", year, st))
}

// WeeklyInjuries returns the injury report for one week.
func (c *Client) WeeklyInjuries(ctx context.Context, year, seasonType, week string) (map[string]any, error) {
	st, err := NormalizeSeasonType(seasonType)
	if err != nil {
		return nil, err
	}
	if err := checkYear(year); err != nil {
		return nil, err
	}
	if err := checkWeek(week); err != nil {
		return nil, err
	}
	return c.get(ctx, "injuries", fmt.Sprintf("en/seasons/%s/%s/%s/injuries", year, st, week))
}

// get fetches {base}/{endpoint}.json?api_key=... and decodes the body.
func (c *Client) get(ctx context.Context, operation, endpoint string) (map[string]any, error) {
	if !c.Configured() {
		metrics.RecordUpstreamRequest(operation, "not_configured", 0)
		return nil, &Error{Endpoint: endpoint, Kind: ErrNotConfigured}
	}

	start := time.Now()
	doc, err := c.fetch(ctx, endpoint)
	elapsed := time.Since(start)
	metrics.RecordUpstreamRequest(operation, outcome(err), float64(elapsed.Milliseconds()))

	if err != nil {
		c.logger.Warn(ctx, "upstream request failed",
			logger.String("endpoint", endpoint),
			logger.Duration("took", elapsed),
			logger.Error(err),
		)
		return nil, err
	}
	c.logger.Debug(ctx, "upstream request complete",
		logger.String("endpoint", endpoint),
		logger.Duration("took", elapsed),
	)
	return doc, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (map[string]any, error) {
	u := c.baseURL + "/" + endpoint + ".json?" + url.Values{"api_key": {c.apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &Error{Endpoint: endpoint, Kind: ErrUpstream, Err: redact(err, c.apiKey)}
	}
	req.Header.Set("Accept", "application/json")
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		kind := ErrUpstream
		if isTimeout(err) {
			kind = ErrTimeout
		}
		return nil, &Error{Endpoint: endpoint, Kind: kind, Err: redact(err, c.apiKey)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &Error{Endpoint: endpoint, StatusCode: resp.StatusCode, Kind: kindForStatus(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		kind := ErrUpstream
		if isTimeout(err) {
			kind = ErrTimeout
		}
		return nil, &Error{Endpoint: endpoint, StatusCode: resp.StatusCode, Kind: kind, Err: err}
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, &Error{Endpoint: endpoint, StatusCode: resp.StatusCode, Kind: ErrUpstream,
			Err: fmt.Errorf("response larger than %d bytes", c.maxBodyBytes)}
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, &Error{Endpoint: endpoint, StatusCode: resp.StatusCode, Kind: ErrUpstream,
			Err: fmt.Errorf("decode response: %w", err)}
	}
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	return map[string]any{"data": v}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// redact strips the API key from transport errors, which embed the URL
// with the key query-escaped.
func redact(err error, key string) error {
	if key == "" {
		return err
	}
	msg := err.Error()
	out := msg
	for _, k := range []string{key, url.QueryEscape(key)} {
		out = strings.ReplaceAll(out, k, "REDACTED")
	}
	if out == msg {
		return err
	}
	return errors.New(out)
}
