// Package listview provides an in-memory renderer that keeps the visible rows
// of a list in step with the transitions it receives.
package listview

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/aretw0/chatlist/pkg/merge"
)

// View implements ports.Renderer by replaying transitions onto its rows.
// Safe for concurrent use.
type View struct {
	mu         sync.RWMutex
	rows       []domain.Cell
	anchor     *domain.ScrollToItem
	stationary *domain.StationaryRange
	applied    int
	version    uint64
}

// New creates an empty view.
func New() *View {
	return &View{rows: []domain.Cell{}}
}

// Apply replays the transition onto the current rows.
// On error the rows are left unchanged.
func (v *View) Apply(ctx context.Context, tr *domain.Transition[domain.Cell]) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	rows, err := merge.Apply(v.rows, tr)
	if err != nil {
		return err
	}
	v.rows = rows
	if tr.ScrollTo != nil {
		anchor := *tr.ScrollTo
		v.anchor = &anchor
	}
	v.stationary = nil
	if tr.Stationary != nil {
		r := *tr.Stationary
		v.stationary = &r
	}
	if tr.Version != 0 {
		v.version = tr.Version
	}
	v.applied++
	return nil
}

// Rows returns a copy of the visible rows.
func (v *View) Rows() []domain.Cell {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.rows)
}

// Anchor returns the last scroll anchor the view settled on, if any.
func (v *View) Anchor() *domain.ScrollToItem {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.anchor == nil {
		return nil
	}
	a := *v.anchor
	return &a
}

// Stationary returns the range held fixed by the last transition, if any.
func (v *View) Stationary() *domain.StationaryRange {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.stationary == nil {
		return nil
	}
	r := *v.stationary
	return &r
}

// Version returns the snapshot version of the last transition that carried one.
func (v *View) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// Applied returns how many transitions the view has applied.
func (v *View) Applied() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.applied
}
