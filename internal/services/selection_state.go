package services

import (
	"slices"
	"sync"

	"route-selection-client/internal/domain"
)

// SelectionListener is notified with a snapshot after every change.
type SelectionListener func(sel domain.Selection)

// SelectionState is the authoritative record of the depot, stops and mode.
// Mutators never fail; each reports whether the record changed and notifies
// listeners only when it did.
type SelectionState struct {
	mu        sync.Mutex
	sel       domain.Selection
	listeners []SelectionListener
}

func NewSelectionState() *SelectionState {
	return &SelectionState{sel: domain.NewSelection()}
}

// Snapshot returns a copy of the current selection.
func (s *SelectionState) Snapshot() domain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Clone()
}

func (s *SelectionState) Subscribe(fn SelectionListener) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *SelectionState) SetDepot(id string) (domain.Selection, bool) {
	return s.update(func(sel *domain.Selection) bool { return sel.SetDepot(id) })
}

func (s *SelectionState) ClearDepot() (domain.Selection, bool) {
	return s.update(func(sel *domain.Selection) bool { return sel.ClearDepot() })
}

func (s *SelectionState) AddStop(id string) (domain.Selection, bool) {
	return s.update(func(sel *domain.Selection) bool { return sel.AddStop(id) })
}

func (s *SelectionState) RemoveStop(index int) (domain.Selection, bool) {
	return s.update(func(sel *domain.Selection) bool { return sel.RemoveStop(index) })
}

func (s *SelectionState) SetMode(m domain.Mode) (domain.Selection, bool) {
	return s.update(func(sel *domain.Selection) bool { return sel.SetMode(m) })
}

// update applies fn under the lock and notifies listeners outside of it.
func (s *SelectionState) update(fn func(sel *domain.Selection) bool) (domain.Selection, bool) {
	s.mu.Lock()
	changed := fn(&s.sel)
	snap := s.sel.Clone()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if changed {
		for _, l := range listeners {
			l(snap.Clone())
		}
	}
	return snap, changed
}
