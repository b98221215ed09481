package api

import "net/http"

// RefreshDependencies defines the interface for on-demand pipeline runs.
type RefreshDependencies interface {
	// Trigger requests a run. Returns false if one is already pending.
	Trigger() bool
}

// RefreshHandler handles refresh requests
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a new refresh handler
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

type refreshResponse struct {
	Status string `json:"status"`
}

// HandlePostRefresh handles POST /refresh requests
func (h *RefreshHandler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if !h.deps.Trigger() {
		writeJSON(w, http.StatusAccepted, refreshResponse{Status: "pending"})
		return
	}
	writeJSON(w, http.StatusAccepted, refreshResponse{Status: "accepted"})
}
