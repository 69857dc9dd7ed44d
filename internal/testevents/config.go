// Package testevents drives a running filter service over HTTP with generated
// scenarios whose verdicts are known in advance, then checks what it decided.
package testevents

import (
	"time"

	"github.com/okian/fsrfilter/internal/domain/veto"
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumEvents  int           // Number of events to generate
	VetoLimit  int           // Number of vetoes to fetch from /vetoes
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Settle     time.Duration // How long to wait for asynchronous verdicts
	Policy     veto.Policy   // Policy the service runs; selects expected verdicts
	Seed       uint64        // Generator seed; zero picks one from the clock
	OutputFile string        // Optional JSON dump of the generated events
	Verbose    bool          // Log every mismatch
}

// AckResponse is the body returned by POST /events.
type AckResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	EventsGenerated  int           `json:"events_generated"`
	EventsSubmitted  int           `json:"events_submitted"`
	EventsAccepted   int           `json:"events_accepted"`
	EventsDuplicate  int           `json:"events_duplicate"`
	EventsFailed     int           `json:"events_failed"`
	DecisionsChecked int           `json:"decisions_checked"`
	DecisionsMissing int           `json:"decisions_missing"`
	Mismatches       int           `json:"mismatches"`
	VetoesListed     int           `json:"vetoes_listed"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          time.Time     `json:"end_time"`
	Duration         time.Duration `json:"duration"`
}
