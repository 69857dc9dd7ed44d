// Package veto decides whether a generator-level event carries a radiated photon
// that was emitted far from every charged lepton, and should therefore be dropped.
package veto

// Particle type codes used by the classification rules.
const (
	pdgElectron = 11
	pdgMuon     = 13
	pdgTau      = 15
	pdgGluon    = 21
	pdgPhoton   = 22
	pdgZ        = 23

	// quark flavours are 1..6
	maxQuarkCode = 6

	finalStateStatus = 1
)

// Origin tags a radiated-photon candidate by the ancestry it was found with.
type Origin int

const (
	// OriginNone marks a candidate matching neither rule; it is never vetoed on.
	OriginNone Origin = iota
	// OriginFSR marks radiation off an outgoing charged lepton.
	OriginFSR
	// OriginISR marks radiation off the incoming partons.
	OriginISR
)

func (o Origin) String() string {
	switch o {
	case OriginFSR:
		return "fsr"
	case OriginISR:
		return "isr"
	default:
		return "none"
	}
}

func abs(code int) int {
	if code < 0 {
		return -code
	}
	return code
}

// isQuark excludes the NoAncestor sentinel (0) so that a missing ancestor never
// passes for a parton.
func isQuark(code int) bool {
	a := abs(code)
	return a >= 1 && a <= maxQuarkCode
}

func isChargedLepton(code int) bool {
	switch abs(code) {
	case pdgElectron, pdgMuon, pdgTau:
		return true
	}
	return false
}

// IsFSR reports whether a photon with the given mother and grandmother codes
// is final-state radiation: a lepton (or photon) mother that itself descends
// from a photon, a Z, or a copy of itself.
func IsFSR(mother, grandmother int) bool {
	if !isChargedLepton(mother) && abs(mother) != pdgPhoton {
		return false
	}
	switch abs(grandmother) {
	case pdgPhoton, pdgZ:
		return true
	}
	return grandmother == mother
}

// IsISR reports whether a photon with the given mother and grandmother codes
// is initial-state radiation: radiated by a quark or gluon, directly or
// through an intermediate photon.
func IsISR(mother, grandmother int) bool {
	if isQuark(mother) || abs(mother) == pdgGluon {
		return true
	}
	return abs(mother) == pdgPhoton && (isQuark(grandmother) || abs(grandmother) == pdgGluon)
}

// Classify combines IsFSR and IsISR. The two rules never both hold.
func Classify(mother, grandmother int) Origin {
	switch {
	case IsFSR(mother, grandmother):
		return OriginFSR
	case IsISR(mother, grandmother):
		return OriginISR
	default:
		return OriginNone
	}
}

// EffectiveGrandmother returns the grandmother code used for classification.
// A charged-lepton mother with no recorded parent stands in for its own
// grandmother.
func EffectiveGrandmother(mother, grandmother int, known bool) int {
	if !known && isChargedLepton(mother) {
		return mother
	}
	return grandmother
}
