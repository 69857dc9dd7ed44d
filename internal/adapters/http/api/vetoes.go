package api

import (
	"context"
	"net/http"
	"strconv"
)

// VetoDependencies lists vetoed events.
type VetoDependencies interface {
	Vetoes(ctx context.Context, n int) ([]Decision, error)
}

// VetoesHandler serves the veto list.
type VetoesHandler struct {
	deps     VetoDependencies
	maxLimit int
}

// NewVetoesHandler creates a new vetoes handler. A maxLimit below one disables the cap.
func NewVetoesHandler(deps VetoDependencies, maxLimit int) *VetoesHandler {
	return &VetoesHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetVetoes handles GET /vetoes?limit=N requests. Limits above the
// configured maximum are clamped to it.
func (h *VetoesHandler) HandleGetVetoes(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_vetoes"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n := defaultVetoLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = parsed
	}
	if h.maxLimit > 0 && n > h.maxLimit {
		n = h.maxLimit
	}

	list, err := h.deps.Vetoes(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if list == nil {
		list = []Decision{}
	}
	writeJSON(w, http.StatusOK, list)
}
