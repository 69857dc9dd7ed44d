package testevents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/fsrfilter/pkg/logger"
)

// ErrVerification is returned by Run when the service disagreed with an expected verdict.
var ErrVerification = errors.New("verification failed")

const pollInterval = 50 * time.Millisecond

// Mismatch records a scenario the service decided differently than expected.
type Mismatch struct {
	EventID  string `json:"event_id"`
	Kind     Kind   `json:"kind"`
	WantKeep bool   `json:"want_keep"`
	GotKeep  bool   `json:"got_keep"`
}

// verifyDecisions fetches the stored verdict of each submitted scenario and
// compares it with the expected one. Missing verdicts are retried until
// config.Settle elapses.
func verifyDecisions(ctx context.Context, client *HTTPClient, config *Config, scenarios []Scenario, known map[string]bool, stats *Stats) ([]Mismatch, error) {
	log := logger.Get().Named("verify")
	deadline := time.Now().Add(config.Settle)

	var mismatches []Mismatch
	for _, s := range scenarios {
		id := s.Event.EventID
		if !known[id] {
			continue
		}
		for {
			d, err := client.getDecision(ctx, id)
			if err == nil {
				stats.DecisionsChecked++
				want := s.WantKeep(config.Policy)
				if d.Keep != want {
					m := Mismatch{EventID: id, Kind: s.Kind, WantKeep: want, GotKeep: d.Keep}
					mismatches = append(mismatches, m)
					if config.Verbose {
						log.Warn(ctx, "verdict mismatch",
							logger.String("eventID", id),
							logger.String("kind", string(s.Kind)),
							logger.Bool("want", want),
							logger.Bool("got", d.Keep))
					}
				}
				break
			}
			if !errors.Is(err, errNotFound) {
				return mismatches, fmt.Errorf("fetch decision %s: %w", id, err)
			}
			if time.Now().After(deadline) {
				stats.DecisionsMissing++
				break
			}
			select {
			case <-ctx.Done():
				return mismatches, ctx.Err()
			case <-time.After(pollInterval):
			}
		}
	}
	stats.Mismatches = len(mismatches)

	log.Info(ctx, "decisions verified",
		logger.Int("checked", stats.DecisionsChecked),
		logger.Int("missing", stats.DecisionsMissing),
		logger.Int("mismatches", stats.Mismatches))
	return mismatches, nil
}

// verifyVetoes checks that /vetoes lists only vetoed events, hardest photon first.
func verifyVetoes(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	if config.VetoLimit < 1 {
		return nil
	}
	list, err := client.getVetoes(ctx, config.VetoLimit)
	if err != nil {
		return fmt.Errorf("fetch vetoes: %w", err)
	}
	stats.VetoesListed = len(list)

	for i, d := range list {
		if d.Keep || d.Veto == nil {
			return fmt.Errorf("%w: vetoes[%d] (%s) is not vetoed", ErrVerification, i, d.EventID)
		}
		if i > 0 && d.Veto.Pt > list[i-1].Veto.Pt {
			return fmt.Errorf("%w: vetoes[%d] pt %.3f above vetoes[%d] pt %.3f",
				ErrVerification, i, d.Veto.Pt, i-1, list[i-1].Veto.Pt)
		}
	}
	return nil
}
