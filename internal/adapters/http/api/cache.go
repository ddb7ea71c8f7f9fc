package api

import (
	"context"
	"net/http"

	"github.com/okian/gridiron/internal/domain/types"
)

// CacheClearedMessage is reported after a successful clear.
const CacheClearedMessage = "Cache cleared successfully"

// CacheDependencies clears the response cache.
type CacheDependencies interface {
	ClearCache(ctx context.Context) int
}

// CacheHandler handles cache administration.
type CacheHandler struct {
	deps CacheDependencies
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(deps CacheDependencies) *CacheHandler {
	return &CacheHandler{deps: deps}
}

// HandleClear handles DELETE /nfl/cache.
func (h *CacheHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	n := h.deps.ClearCache(r.Context())
	writeJSON(w, http.StatusOK, types.CacheClearResponse{Message: CacheClearedMessage, Cleared: n})
}
