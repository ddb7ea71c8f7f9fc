// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
)

// DataReader exposes the cached upstream reads.
type DataReader interface {
	Teams(ctx context.Context) (map[string]any, error)
	Schedule(ctx context.Context, year, seasonType string) (map[string]any, error)
	TeamProfile(ctx context.Context, teamID string) (map[string]any, error)
	PlayerProfile(ctx context.Context, playerID string) (map[string]any, error)
	GameBoxscore(ctx context.Context, gameID string) (map[string]any, error)
	Standings(ctx context.Context, year, seasonType string) (map[string]any, error)
	WeeklyInjuries(ctx context.Context, year, seasonType, week string) (map[string]any, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	DataReader

	// Answer runs the question pipeline. It never fails.
	Answer(ctx context.Context, question string) types.AnswerResponse

	// ClearCache drops every cached entry and returns how many were removed.
	ClearCache(ctx context.Context) int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	dataHandler   *DataHandler
	queryHandler  *QueryHandler
	cacheHandler  *CacheHandler
	logger        logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.dataHandler = NewDataHandler(deps, s.logger)
	s.queryHandler = NewQueryHandler(deps)
	s.cacheHandler = NewCacheHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /nfl/teams", MetricsMiddleware(s.dataHandler.HandleTeams, "teams"))
	mux.HandleFunc("GET /nfl/teams/{team_id}", MetricsMiddleware(s.dataHandler.HandleTeamProfile, "team_profile"))
	mux.HandleFunc("GET /nfl/schedule/{year}/{season_type}", MetricsMiddleware(s.dataHandler.HandleSchedule, "schedule"))
	mux.HandleFunc("GET /nfl/players/{player_id}", MetricsMiddleware(s.dataHandler.HandlePlayerProfile, "player_profile"))
	mux.HandleFunc("GET /nfl/games/{game_id}/boxscore", MetricsMiddleware(s.dataHandler.HandleBoxscore, "boxscore"))
	mux.HandleFunc("GET /nfl/standings/{year}/{season_type}", MetricsMiddleware(s.dataHandler.HandleStandings, "standings"))
	mux.HandleFunc("GET /nfl/injuries/{year}/{season_type}/{week}", MetricsMiddleware(s.dataHandler.HandleInjuries, "injuries"))

	mux.HandleFunc("DELETE /nfl/cache", MetricsMiddleware(s.cacheHandler.HandleClear, "cache"))
	mux.HandleFunc("POST /nfl/query", MetricsMiddleware(s.queryHandler.HandleQuery, "query"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
