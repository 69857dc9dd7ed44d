package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	repository "github.com/okian/fsrfilter/internal/adapters/repository"
	service "github.com/okian/fsrfilter/internal/app"
)

// DecisionDependencies reads stored verdicts.
type DecisionDependencies interface {
	Decision(ctx context.Context, id string) (Decision, error)
}

// DecisionHandler serves single verdict lookups.
type DecisionHandler struct {
	deps DecisionDependencies
}

// NewDecisionHandler creates a new decision handler.
func NewDecisionHandler(deps DecisionDependencies) *DecisionHandler {
	return &DecisionHandler{deps: deps}
}

// HandleGetDecision handles GET /decisions/{event_id} requests.
func (h *DecisionHandler) HandleGetDecision(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_decision"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/decisions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	d, err := h.deps.Decision(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, d)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
