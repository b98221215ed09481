package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/guildscore/internal/domain/types"
)

// ScoresDependencies defines the interface for scoreboard listing.
type ScoresDependencies interface {
	TopN(ctx context.Context, key types.SortKey, n int) ([]Entry, error)
}

// ScoresHandler handles scoreboard requests
type ScoresHandler struct {
	deps     ScoresDependencies
	maxLimit int
}

// NewScoresHandler creates a new scores handler
func NewScoresHandler(deps ScoresDependencies, maxLimit int) *ScoresHandler {
	return &ScoresHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetScores handles GET /scores?limit=N&sort=parse|ilvl|attendance|name requests
func (h *ScoresHandler) HandleGetScores(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_scores"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	n := min(DefaultLimit, h.maxLimit)
	if limitStr := q.Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	key, err := types.ParseSortKey(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_sort", WrapKind(op, ErrBadRequest, err))
		return
	}

	entries, err := h.deps.TopN(r.Context(), key, n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
