package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/gridiron/internal/domain/types"
)

const maxQueryBodyBytes = 64 << 10

var errEmptyQuery = errors.New("query must not be empty")

// QueryDependencies answers questions.
type QueryDependencies interface {
	Answer(ctx context.Context, question string) types.AnswerResponse
}

// QueryHandler handles question requests.
type QueryHandler struct {
	deps QueryDependencies
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(deps QueryDependencies) *QueryHandler {
	return &QueryHandler{deps: deps}
}

// HandleQuery handles POST /nfl/query. The answer is always 200; only a
// malformed or empty body is rejected.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	const op = "api.query"
	var req types.QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBodyBytes)).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	question := req.Normalized()
	if question == "" {
		writeError(w, WrapKind(op, ErrBadRequest, errEmptyQuery))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Answer(r.Context(), question))
}
