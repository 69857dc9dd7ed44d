package testevents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/fsrfilter/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Report is the outcome of a run.
type Report struct {
	Stats      Stats      `json:"stats"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// Run executes a complete load test: health check, generation, submission,
// verdict verification and the veto listing check. A run that completes but
// finds mismatches returns its report together with ErrVerification.
func Run(ctx context.Context, config *Config) (*Report, error) {
	report := &Report{}
	stats := &report.Stats
	stats.StartTime = time.Now()

	log := logger.Get().Named("loadtest")
	log.Info(ctx, "starting filter load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("events", config.NumEvents),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.String("policy", config.Policy.String()))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	if err := checkServiceHealth(ctx, client); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	scenarios := generateScenarios(ctx, config, stats)
	if config.OutputFile != "" {
		if err := saveScenarios(config.OutputFile, scenarios); err != nil {
			log.Warn(ctx, "failed to save events to file", logger.Error(err))
		}
	}

	known := submitEvents(ctx, client, config, scenarios, stats)

	mismatches, err := verifyDecisions(ctx, client, config, scenarios, known, stats)
	report.Mismatches = mismatches
	if err != nil {
		return report, fmt.Errorf("decision verification failed: %w", err)
	}

	if err := verifyVetoes(ctx, client, config, stats); err != nil {
		return report, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logFinalStats(ctx, stats)

	if stats.Mismatches > 0 || stats.DecisionsMissing > 0 {
		return report, fmt.Errorf("%w: %d mismatched, %d missing", ErrVerification, stats.Mismatches, stats.DecisionsMissing)
	}
	return report, nil
}

func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// saveScenarios writes the generated scenarios as a JSON array.
func saveScenarios(filename string, scenarios []Scenario) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(scenarios, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenarios: %w", err)
	}
	return os.WriteFile(filename, data, filePermission)
}

func logFinalStats(ctx context.Context, stats *Stats) {
	var eventsPerSecond float64
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsAccepted", stats.EventsAccepted),
		logger.Int("eventsDuplicate", stats.EventsDuplicate),
		logger.Int("eventsFailed", stats.EventsFailed),
		logger.Int("decisionsChecked", stats.DecisionsChecked),
		logger.Int("mismatches", stats.Mismatches),
		logger.Int("vetoesListed", stats.VetoesListed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("eventsPerSecond", eventsPerSecond))
}
