// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/fsrfilter/internal/domain/types"
)

const (
	defaultVetoLimit = 10
	maxBodyBytes     = 8 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EventDependencies
	FilterDependencies
	DecisionDependencies
	VetoDependencies
}

// Decision mirrors the read shape returned by verdict queries.
type Decision = types.Decision

// Server wires HTTP routes for the filter API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	eventsHandler   *EventsHandler
	filterHandler   *FilterHandler
	decisionHandler *DecisionHandler
	vetoesHandler   *VetoesHandler
}

// NewServer creates a new API server with all handlers. maxVetoLimit caps
// the limit accepted by GET /vetoes.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxVetoLimit int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		eventsHandler:   NewEventsHandler(deps),
		filterHandler:   NewFilterHandler(deps),
		decisionHandler: NewDecisionHandler(deps),
		vetoesHandler:   NewVetoesHandler(deps, maxVetoLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/filter", MetricsMiddleware(s.filterHandler.HandleFilter, "filter"))
	mux.HandleFunc("/decisions/", MetricsMiddleware(s.decisionHandler.HandleGetDecision, "decisions"))
	mux.HandleFunc("/vetoes", MetricsMiddleware(s.vetoesHandler.HandleGetVetoes, "vetoes"))
}

type ackResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeEvent reads one event from the request body. Unknown keys are ignored.
func decodeEvent(w http.ResponseWriter, r *http.Request) (types.Event, error) {
	var ev types.Event
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&ev)
	return ev, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
