package testevents

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fsrfilter/internal/domain/types"
	"github.com/okian/fsrfilter/internal/domain/veto"
	"github.com/okian/fsrfilter/pkg/logger"
)

// Kind names a scenario shape.
type Kind string

// Scenario kinds. Each is built so that its verdict under every policy is fixed.
const (
	KindFSRIsolated  Kind = "fsr-isolated"
	KindFSRCollinear Kind = "fsr-collinear"
	KindISRIsolated  Kind = "isr-isolated"
	KindSoftPhoton   Kind = "soft-photon"
	KindNoLepton     Kind = "no-lepton"
)

// Kinds lists every scenario kind in generation order.
var Kinds = []Kind{KindFSRIsolated, KindFSRCollinear, KindISRIsolated, KindSoftPhoton, KindNoLepton}

// PDG codes used when building scenarios.
const (
	pdgDown     = 1
	pdgUp       = 2
	pdgElectron = 11
	pdgMuon     = 13
	pdgGluon    = 21
	pdgPhoton   = 22
	pdgZ        = 23
	pdgProton   = 2212

	statusFinal        = 1
	statusIncoming     = 4
	statusHardProcess  = 22
	statusInitialState = 21
)

// Kinematic ranges kept clear of the veto thresholds.
const (
	hardPhotonMin   = veto.DefaultMinPt + 2
	hardPhotonRange = 40.0
	softPhotonMax   = veto.DefaultMinPt - 2
	leptonPtMin     = 20.0
	leptonPtRange   = 60.0
	isolatedMinDR   = veto.DefaultMaxDeltaR + 0.3
	isolatedRangeDR = 1.0
	collinearMaxDR  = veto.DefaultMaxDeltaR - 0.1
	etaRange        = 2.0
)

// Scenario is a generated event together with its kind.
type Scenario struct {
	Kind  Kind        `json:"kind"`
	Event types.Event `json:"event"`
}

// WantKeep reports the verdict the service must reach for s under policy p.
func (s Scenario) WantKeep(p veto.Policy) bool { //nolint:gocritic // read-only
	switch s.Kind {
	case KindFSRIsolated:
		return false
	case KindFSRCollinear:
		// only the direct-lepton rules skip isolation
		return p != veto.PolicyDirectLepton
	case KindISRIsolated:
		return p != veto.PolicyRadiated
	default:
		return true
	}
}

// Generate builds n scenarios cycling through Kinds. Event ids are prefixed
// with runID so repeated runs against one service are not duplicates.
func Generate(n int, seed uint64, runID string) []Scenario {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	out := make([]Scenario, n)
	for i := range out {
		kind := Kinds[i%len(Kinds)]
		out[i] = Scenario{
			Kind:  kind,
			Event: buildEvent(rng, kind, fmt.Sprintf("%s-%06d", runID, i)),
		}
	}
	return out
}

func generateScenarios(ctx context.Context, config *Config, stats *Stats) []Scenario {
	runID := "lt-" + uuid.NewString()[:8]
	scenarios := Generate(config.NumEvents, config.Seed, runID)
	stats.EventsGenerated = len(scenarios)
	logger.Get().Info(ctx, "generated scenarios",
		logger.Int("count", len(scenarios)),
		logger.String("runID", runID))
	return scenarios
}

func between(rng *rand.Rand, lo, span float64) float64 {
	return lo + rng.Float64()*span
}

// buildEvent lays out a small generator record for kind. The photon is always
// the last particle.
func buildEvent(rng *rand.Rand, kind Kind, id string) types.Event {
	eta := between(rng, -etaRange/2, etaRange)
	phi := between(rng, -1, 2)
	lepton := pdgMuon
	if rng.IntN(2) == 0 {
		lepton = pdgElectron
	}
	if rng.IntN(2) == 0 {
		lepton = -lepton
	}

	var particles []types.Particle
	switch kind {
	case KindFSRIsolated, KindFSRCollinear, KindSoftPhoton:
		dr := between(rng, isolatedMinDR, isolatedRangeDR)
		if kind == KindFSRCollinear {
			dr = between(rng, 0.05, collinearMaxDR-0.05)
		}
		pt := between(rng, hardPhotonMin, hardPhotonRange)
		if kind == KindSoftPhoton {
			pt = between(rng, 1, softPhotonMax-1)
		}
		particles = []types.Particle{
			{PdgID: pdgZ, Status: statusHardProcess, Pt: between(rng, 0, 20), Mass: 91.19},
			{PdgID: lepton, Status: statusFinal, Pt: between(rng, leptonPtMin, leptonPtRange), Eta: eta, Phi: phi, Mothers: []int{0}},
			{PdgID: pdgPhoton, Status: statusFinal, Pt: pt, Eta: eta, Phi: phi + dr, Mothers: []int{1}},
		}
	case KindISRIsolated:
		quark := pdgUp
		if rng.IntN(2) == 0 {
			quark = pdgDown
		}
		particles = []types.Particle{
			{PdgID: pdgProton, Status: statusIncoming},
			{PdgID: quark, Status: statusInitialState, Mothers: []int{0}},
			{PdgID: lepton, Status: statusFinal, Pt: between(rng, leptonPtMin, leptonPtRange), Eta: eta, Phi: phi},
			{PdgID: pdgPhoton, Status: statusFinal, Pt: between(rng, hardPhotonMin, hardPhotonRange), Eta: eta, Phi: phi + between(rng, isolatedMinDR, isolatedRangeDR), Mothers: []int{1}},
		}
	default:
		particles = []types.Particle{
			{PdgID: pdgGluon, Status: statusInitialState},
			{PdgID: pdgPhoton, Status: statusFinal, Pt: between(rng, hardPhotonMin, hardPhotonRange), Eta: eta, Phi: phi, Mothers: []int{0}},
		}
	}

	return types.Event{
		EventID:     id,
		Collections: map[string][]types.Particle{types.DefaultGenTag: particles},
	}
}
