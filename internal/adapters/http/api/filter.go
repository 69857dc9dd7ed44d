package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/fsrfilter/internal/domain/types"
)

// FilterDependencies decides events synchronously.
type FilterDependencies interface {
	Filter(ctx context.Context, ev types.Event) (types.Decision, error)
}

// FilterHandler runs the veto inline and returns the decision.
type FilterHandler struct {
	deps FilterDependencies
}

// NewFilterHandler creates a new filter handler.
func NewFilterHandler(deps FilterDependencies) *FilterHandler {
	return &FilterHandler{deps: deps}
}

// HandleFilter handles POST /filter requests.
func (h *FilterHandler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	const op = "api.filter"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ev, err := decodeEvent(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	d, err := h.deps.Filter(r.Context(), ev)
	if err != nil {
		if errors.Is(err, types.ErrInvalidParticle) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}
