package veto

import (
	"context"
	"math"

	"go-hep.org/x/hep/fmom"

	"github.com/okian/fsrfilter/internal/domain/model"
	"github.com/okian/fsrfilter/pkg/logger"
)

// Veto describes the photon that caused an event to be dropped.
type Veto struct {
	Index       int
	Pt          float64
	DeltaR      float64 // zero when the policy does not test isolation
	Origin      Origin
	Mother      int
	Grandmother int
}

// Decision is the outcome of one Filter invocation.
type Decision struct {
	Keep       bool
	Policy     Policy
	Leptons    int
	Candidates int
	FSR        int
	ISR        int
	Veto       *Veto
}

type candidate struct {
	index       int
	mother      int
	grandmother int
	origin      Origin
}

// Filter is the radiated-photon veto. It holds no per-event state and is safe
// for concurrent use.
type Filter struct {
	policy     Policy
	thresholds Thresholds
	logger     logger.Logger
}

// New creates a Filter with the current rule set and default thresholds.
func New(opts ...Option) *Filter {
	f := &Filter{
		policy:     PolicyRadiated,
		thresholds: DefaultThresholds(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Policy returns the rule generation applied by f.
func (f *Filter) Policy() Policy { return f.policy }

// Keep reports whether the event described by particles should be retained.
func (f *Filter) Keep(ctx context.Context, particles model.Collection) bool {
	return f.Decide(ctx, particles).Keep
}

// Decide runs the veto over one event's particles.
func (f *Filter) Decide(ctx context.Context, particles model.Collection) Decision {
	d := Decision{Keep: true, Policy: f.policy}

	var (
		leptons    []int
		candidates []candidate
	)
	for i := range particles {
		p := &particles[i]
		if p.Status != finalStateStatus {
			continue
		}
		if isChargedLepton(p.PdgID) {
			leptons = append(leptons, i)
			continue
		}
		if p.PdgID != pdgPhoton {
			continue
		}
		mother, ok := particles.MotherCode(i)
		if !ok {
			continue
		}
		grandmother, ok := particles.GrandmotherCode(i)
		grandmother = EffectiveGrandmother(mother, grandmother, ok)
		c := candidate{
			index:       i,
			mother:      mother,
			grandmother: grandmother,
			origin:      f.policy.Origin(mother, grandmother),
		}
		switch c.origin {
		case OriginFSR:
			d.FSR++
		case OriginISR:
			d.ISR++
		}
		candidates = append(candidates, c)
	}
	d.Leptons = len(leptons)
	d.Candidates = len(candidates)

	if len(candidates) == 0 {
		return d
	}
	isolation := f.policy.requiresIsolation()
	if isolation && len(leptons) == 0 {
		return d
	}

	for _, c := range candidates {
		if c.origin == OriginNone {
			continue
		}
		photon := &particles[c.index]
		if !f.thresholds.Energetic(photon.Pt) {
			continue
		}
		var dr float64
		if isolation {
			dr = minDeltaR(particles, photon, leptons)
			if !f.thresholds.Isolated(dr) {
				continue
			}
		}
		d.Keep = false
		d.Veto = &Veto{
			Index:       c.index,
			Pt:          photon.Pt,
			DeltaR:      dr,
			Origin:      c.origin,
			Mother:      c.mother,
			Grandmother: c.grandmother,
		}
		if f.logger != nil {
			f.logger.Debug(ctx, "vetoing event on radiated photon",
				logger.Float64("pt", photon.Pt),
				logger.Float64("deltaR", dr),
				logger.String("origin", c.origin.String()),
				logger.Int("mother", c.mother),
				logger.Int("grandmother", c.grandmother),
			)
		}
		return d
	}

	return d
}

// minDeltaR returns the smallest eta-phi distance between photon and any lepton.
func minDeltaR(particles model.Collection, photon *model.Particle, leptons []int) float64 {
	pg := fmom.NewPtEtaPhiM(photon.Pt, photon.Eta, photon.Phi, photon.Mass)
	best := math.Inf(1)
	for _, i := range leptons {
		l := &particles[i]
		pl := fmom.NewPtEtaPhiM(l.Pt, l.Eta, l.Phi, l.Mass)
		if dr := fmom.DeltaR(&pg, &pl); dr < best {
			best = dr
		}
	}
	return best
}
