package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/guildscore/internal/adapters/repository"
	"github.com/okian/guildscore/internal/domain/types"
)

// CharacterDependencies defines the interface for single-character lookups.
type CharacterDependencies interface {
	Rank(ctx context.Context, name string, key types.SortKey) (Entry, error)
}

// CharacterHandler handles character requests.
type CharacterHandler struct {
	deps CharacterDependencies
}

// NewCharacterHandler creates a new character handler.
func NewCharacterHandler(deps CharacterDependencies) *CharacterHandler {
	return &CharacterHandler{deps: deps}
}

// HandleGetCharacter handles GET /scores/{name}?sort=key requests.
func (h *CharacterHandler) HandleGetCharacter(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_character"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /scores/
	name := strings.TrimPrefix(r.URL.Path, "/scores/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	key, err := types.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_sort", WrapKind(op, ErrBadRequest, err))
		return
	}

	entry, err := h.deps.Rank(r.Context(), name, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
