// Package repository keeps the verdicts produced by the filter workers.
package repository

import (
	"context"

	"github.com/okian/fsrfilter/internal/domain/model"
)

// Summary aggregates the stored verdicts.
type Summary struct {
	Total     int `json:"total"`
	Kept      int `json:"kept"`
	Vetoed    int `json:"vetoed"`
	VetoedFSR int `json:"vetoed_fsr"`
	VetoedISR int `json:"vetoed_isr"`
}

// Store provides read/write access to verdicts.
type Store interface {
	// Record inserts or overwrites the verdict for v.EventID.
	Record(ctx context.Context, v model.Verdict) error

	// Get returns the verdict for an event, or ErrNotFound.
	Get(ctx context.Context, eventID string) (model.Verdict, error)

	// Vetoes returns up to limit vetoed verdicts, hardest photon first.
	Vetoes(ctx context.Context, limit int) ([]model.Verdict, error)

	Count(ctx context.Context) int
	Summary(ctx context.Context) Summary
}
