package api

import (
	"context"
	"net/http"

	"github.com/okian/gridiron/pkg/logger"
)

// DataHandler proxies the cached upstream reads.
type DataHandler struct {
	deps   DataReader
	logger logger.Logger
}

// NewDataHandler creates a new data handler.
func NewDataHandler(deps DataReader, log logger.Logger) *DataHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &DataHandler{deps: deps, logger: log}
}

func (h *DataHandler) serve(w http.ResponseWriter, r *http.Request, op string, read func(context.Context) (map[string]any, error)) {
	doc, err := read(r.Context())
	if err != nil {
		status, code := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Warn(r.Context(), "data read failed",
				logger.String("op", op),
				logger.String("code", code),
				logger.Error(err),
			)
		}
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// HandleTeams handles GET /nfl/teams.
func (h *DataHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.teams", h.deps.Teams)
}

// HandleTeamProfile handles GET /nfl/teams/{team_id}.
func (h *DataHandler) HandleTeamProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("team_id")
	h.serve(w, r, "api.team_profile", func(ctx context.Context) (map[string]any, error) {
		return h.deps.TeamProfile(ctx, id)
	})
}

// HandleSchedule handles GET /nfl/schedule/{year}/{season_type}.
func (h *DataHandler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	year, st := r.PathValue("year"), r.PathValue("season_type")
	h.serve(w, r, "api.schedule", func(ctx context.Context) (map[string]any, error) {
		return h.deps.Schedule(ctx, year, st)
	})
}

// HandlePlayerProfile handles GET /nfl/players/{player_id}.
func (h *DataHandler) HandlePlayerProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("player_id")
	h.serve(w, r, "api.player_profile", func(ctx context.Context) (map[string]any, error) {
		return h.deps.PlayerProfile(ctx, id)
	})
}

// HandleBoxscore handles GET /nfl/games/{game_id}/boxscore.
func (h *DataHandler) HandleBoxscore(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("game_id")
	h.serve(w, r, "api.boxscore", func(ctx context.Context) (map[string]any, error) {
		return h.deps.GameBoxscore(ctx, id)
	})
}

// HandleStandings handles GET /nfl/standings/{year}/{season_type}.
func (h *DataHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	year, st := r.PathValue("year"), r.PathValue("season_type")
	h.serve(w, r, "api.standings", func(ctx context.Context) (map[string]any, error) {
		return h.deps.Standings(ctx, year, st)
	})
}

// HandleInjuries handles GET /nfl/injuries/{year}/{season_type}/{week}.
func (h *DataHandler) HandleInjuries(w http.ResponseWriter, r *http.Request) {
	year, st, week := r.PathValue("year"), r.PathValue("season_type"), r.PathValue("week")
	h.serve(w, r, "api.injuries", func(ctx context.Context) (map[string]any, error) {
		return h.deps.WeeklyInjuries(ctx, year, st, week)
	})
}
