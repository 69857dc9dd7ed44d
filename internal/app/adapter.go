package service

import (
	"context"
	"time"

	"github.com/okian/fsrfilter/internal/domain/model"
	"github.com/okian/fsrfilter/internal/domain/veto"
	"github.com/okian/fsrfilter/pkg/metrics"
)

// filterAdapter adapts veto.Filter to worker.Decider: it selects the generator
// collection of an event and flattens the decision into a storable verdict.
type filterAdapter struct {
	filter *veto.Filter
	genTag string
}

func (a *filterAdapter) Decide(ctx context.Context, e model.Event) model.Verdict { //nolint:gocritic // events travel by value
	start := time.Now()
	d := a.filter.Decide(ctx, e.Collection(a.genTag))
	metrics.RecordFilterLatency(float64(time.Since(start).Microseconds()) / 1000)

	metrics.RecordEventFiltered(d.Keep)
	metrics.RecordPhotonCandidates(veto.OriginFSR.String(), d.FSR)
	metrics.RecordPhotonCandidates(veto.OriginISR.String(), d.ISR)
	metrics.RecordPhotonCandidates(veto.OriginNone.String(), d.Candidates-d.FSR-d.ISR)

	v := model.Verdict{
		EventID:    e.ID,
		Keep:       d.Keep,
		Policy:     d.Policy.String(),
		Leptons:    d.Leptons,
		Candidates: d.Candidates,
		FSR:        d.FSR,
		ISR:        d.ISR,
		DecidedAt:  time.Now(),
	}
	if d.Veto != nil {
		v.VetoIndex = d.Veto.Index
		v.VetoPt = d.Veto.Pt
		v.VetoDeltaR = d.Veto.DeltaR
		v.VetoOrigin = d.Veto.Origin.String()
		metrics.RecordVetoPhoton(d.Veto.Pt, d.Veto.DeltaR)
	}
	return v
}
