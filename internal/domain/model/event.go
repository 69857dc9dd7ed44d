// Package model contains domain models passed between layers.
package model

import "time"

// NoAncestor is the type code reported for an absent mother or grandmother.
const NoAncestor = 0

// Particle is one generator-level particle record of an event.
// Mothers holds indices into the owning Collection; it never owns them.
type Particle struct {
	PdgID   int
	Status  int
	Pt      float64
	Eta     float64
	Phi     float64
	Mass    float64
	Mothers []int
}

// Collection is the ordered particle sequence of a single event.
type Collection []Particle

// Mother returns the index of the k-th immediate ancestor of particle i.
// Indices that are negative or point outside the collection are reported as absent.
func (c Collection) Mother(i, k int) (int, bool) {
	if i < 0 || i >= len(c) || k < 0 || k >= len(c[i].Mothers) {
		return 0, false
	}
	m := c[i].Mothers[k]
	if m < 0 || m >= len(c) {
		return 0, false
	}
	return m, true
}

// MotherCode returns the type code of the primary mother of particle i.
func (c Collection) MotherCode(i int) (int, bool) {
	m, ok := c.Mother(i, 0)
	if !ok {
		return NoAncestor, false
	}
	return c[m].PdgID, true
}

// GrandmotherCode returns the type code of the primary mother of the primary
// mother of particle i.
func (c Collection) GrandmotherCode(i int) (int, bool) {
	m, ok := c.Mother(i, 0)
	if !ok {
		return NoAncestor, false
	}
	return c.MotherCode(m)
}

// Event is one collision event as handed over by the producer. Collections are
// keyed by their input tag, e.g. "genParticles".
type Event struct {
	ID          string
	Run         uint32
	Lumi        uint32
	Number      uint64
	Collections map[string]Collection
}

// Collection returns the collection stored under tag, or an empty collection.
func (e Event) Collection(tag string) Collection {
	return e.Collections[tag]
}

// Verdict is the recorded outcome of filtering one event.
type Verdict struct {
	EventID    string
	Keep       bool
	Policy     string
	Leptons    int
	Candidates int
	FSR        int
	ISR        int

	// Veto details, set only when Keep is false.
	VetoIndex  int
	VetoPt     float64
	VetoDeltaR float64
	VetoOrigin string

	DecidedAt time.Time
}
