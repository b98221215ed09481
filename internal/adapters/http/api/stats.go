package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/guildscore/internal/adapters/repository"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// SnapshotProvider exposes metadata of the published scoreboard.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (repository.Meta, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider    StatsProvider
	snapshotProvider SnapshotProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider, snapshotProvider SnapshotProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, snapshotProvider: snapshotProvider}
}

type statsResponse struct {
	Service  map[string]any   `json:"service"`
	Snapshot *repository.Meta `json:"snapshot"`
}

// HandleStats handles GET /stats requests. snapshot is null until the first
// successful run.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	resp := statsResponse{Service: h.statsProvider.GetStats()}
	meta, err := h.snapshotProvider.Snapshot(r.Context())
	switch {
	case err == nil:
		resp.Snapshot = &meta
	case !errors.Is(err, repository.ErrNoSnapshot):
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
