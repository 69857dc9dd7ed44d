package veto

import (
	"fmt"
	"strings"
)

// Default veto thresholds.
const (
	DefaultMinPt     = 10.0
	DefaultMaxDeltaR = 0.4
)

// Thresholds holds the energy and isolation cuts applied to classified photons.
type Thresholds struct {
	MinPt     float64
	MaxDeltaR float64
}

// DefaultThresholds returns the cuts used by every Filter.
func DefaultThresholds() Thresholds {
	return Thresholds{MinPt: DefaultMinPt, MaxDeltaR: DefaultMaxDeltaR}
}

// Energetic reports whether pt is strictly above the energy cut.
func (t Thresholds) Energetic(pt float64) bool { return pt > t.MinPt }

// Isolated reports whether a photon-lepton distance is strictly above the cone size.
func (t Thresholds) Isolated(deltaR float64) bool { return deltaR > t.MaxDeltaR }

// Policy selects which generation of the veto rules is applied.
// The zero value is the current rule set.
type Policy int

const (
	// PolicyRadiated classifies FSR and ISR photons and requires isolation (v3).
	PolicyRadiated Policy = iota
	// PolicyLeptonParentage classifies FSR photons only and requires isolation (v2).
	PolicyLeptonParentage
	// PolicyDirectLepton vetoes any energetic photon whose mother is an electron
	// or muon, without isolation or a lepton requirement (v1).
	PolicyDirectLepton
)

func (p Policy) String() string {
	switch p {
	case PolicyLeptonParentage:
		return "lepton-parentage"
	case PolicyDirectLepton:
		return "direct-lepton"
	default:
		return "radiated"
	}
}

// ParsePolicy accepts a policy name or its version alias (v1, v2, v3).
// An empty string selects PolicyRadiated.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "v3", "radiated":
		return PolicyRadiated, nil
	case "v2", "lepton-parentage":
		return PolicyLeptonParentage, nil
	case "v1", "direct-lepton":
		return PolicyDirectLepton, nil
	default:
		return PolicyRadiated, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Origin classifies a photon by its mother and grandmother codes under p.
func (p Policy) Origin(mother, grandmother int) Origin {
	switch p {
	case PolicyDirectLepton:
		if a := abs(mother); a == pdgElectron || a == pdgMuon {
			return OriginFSR
		}
		return OriginNone
	case PolicyLeptonParentage:
		if IsFSR(mother, grandmother) {
			return OriginFSR
		}
		return OriginNone
	default:
		return Classify(mother, grandmother)
	}
}

func (p Policy) requiresIsolation() bool {
	return p != PolicyDirectLepton
}
