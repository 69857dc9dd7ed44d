// Package types contains the wire representation of events and decisions
// shared by the HTTP API, the CLI and the load-test client.
package types

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fsrfilter/internal/domain/model"
)

// DefaultGenTag names the generator-level particle collection.
const DefaultGenTag = "genParticles"

// ErrInvalidParticle is returned by Event.Validate for unusable kinematics.
var ErrInvalidParticle = errors.New("invalid particle")

// Particle is one generator particle record. Mothers are indices into the
// enclosing collection.
type Particle struct {
	PdgID   int     `json:"pdg_id" yaml:"pdg_id"`
	Status  int     `json:"status" yaml:"status"`
	Pt      float64 `json:"pt" yaml:"pt"`
	Eta     float64 `json:"eta" yaml:"eta"`
	Phi     float64 `json:"phi" yaml:"phi"`
	Mass    float64 `json:"mass,omitempty" yaml:"mass,omitempty"`
	Mothers []int   `json:"mothers,omitempty" yaml:"mothers,omitempty"`
}

// Event is one collision event with its named particle collections.
type Event struct {
	EventID     string                `json:"event_id,omitempty" yaml:"event_id,omitempty"`
	Run         uint32                `json:"run,omitempty" yaml:"run,omitempty"`
	Lumi        uint32                `json:"lumi,omitempty" yaml:"lumi,omitempty"`
	Number      uint64                `json:"event,omitempty" yaml:"event,omitempty"`
	Collections map[string][]Particle `json:"collections" yaml:"collections"`
}

// ID returns the explicit event id, the run:lumi:event triple when any part
// is set, or a random UUID.
func (e Event) ID() string {
	if e.EventID != "" {
		return e.EventID
	}
	if e.Run != 0 || e.Lumi != 0 || e.Number != 0 {
		return strconv.FormatUint(uint64(e.Run), 10) + ":" +
			strconv.FormatUint(uint64(e.Lumi), 10) + ":" +
			strconv.FormatUint(e.Number, 10)
	}
	return uuid.NewString()
}

// Validate checks particle kinematics. Ancestry is not validated: dangling
// mother indices are legal and read as "no ancestor".
func (e Event) Validate() error {
	for tag, particles := range e.Collections {
		for i, p := range particles {
			if !finite(p.Pt) || p.Pt < 0 {
				return fmt.Errorf("%w: %s[%d] pt=%v", ErrInvalidParticle, tag, i, p.Pt)
			}
			if !finite(p.Eta) || !finite(p.Phi) || !finite(p.Mass) {
				return fmt.Errorf("%w: %s[%d] eta=%v phi=%v mass=%v", ErrInvalidParticle, tag, i, p.Eta, p.Phi, p.Mass)
			}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ToModel converts the wire event into the domain model, assigning id as its ID.
func (e Event) ToModel(id string) model.Event {
	out := model.Event{
		ID:          id,
		Run:         e.Run,
		Lumi:        e.Lumi,
		Number:      e.Number,
		Collections: make(map[string]model.Collection, len(e.Collections)),
	}
	for tag, particles := range e.Collections {
		c := make(model.Collection, len(particles))
		for i, p := range particles {
			c[i] = model.Particle{
				PdgID:   p.PdgID,
				Status:  p.Status,
				Pt:      p.Pt,
				Eta:     p.Eta,
				Phi:     p.Phi,
				Mass:    p.Mass,
				Mothers: p.Mothers,
			}
		}
		out.Collections[tag] = c
	}
	return out
}

// VetoPhoton describes the photon that vetoed an event.
type VetoPhoton struct {
	Index  int     `json:"index"`
	Pt     float64 `json:"pt"`
	DeltaR float64 `json:"delta_r"`
	Origin string  `json:"origin"`
}

// Decision is the read shape of a filtered event.
type Decision struct {
	EventID    string      `json:"event_id"`
	Keep       bool        `json:"keep"`
	Policy     string      `json:"policy"`
	Leptons    int         `json:"leptons"`
	Candidates int         `json:"candidates"`
	FSR        int         `json:"fsr"`
	ISR        int         `json:"isr"`
	Veto       *VetoPhoton `json:"veto,omitempty"`
	DecidedAt  string      `json:"decided_at,omitempty"`
}

// NewDecision converts a stored verdict to its wire shape.
func NewDecision(v model.Verdict) Decision {
	d := Decision{
		EventID:    v.EventID,
		Keep:       v.Keep,
		Policy:     v.Policy,
		Leptons:    v.Leptons,
		Candidates: v.Candidates,
		FSR:        v.FSR,
		ISR:        v.ISR,
	}
	if !v.Keep {
		d.Veto = &VetoPhoton{
			Index:  v.VetoIndex,
			Pt:     v.VetoPt,
			DeltaR: v.VetoDeltaR,
			Origin: v.VetoOrigin,
		}
	}
	if !v.DecidedAt.IsZero() {
		d.DecidedAt = v.DecidedAt.UTC().Format(time.RFC3339Nano)
	}
	return d
}
