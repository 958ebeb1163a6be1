// Package view holds the in-memory incident collection a presentation
// layer displays. It is the only mutable state in the system: the
// collection is rebuilt on every fetch and patched in place on every
// confirmed update. The State is owned by the caller and handed to the
// console service at construction; the client components themselves
// stay stateless.
package view

import (
	"fmt"
	"sync"

	"github.com/linnemanlabs/oncall/internal/incident"
)

// State is an ordered, id-indexed incident collection. Order is the
// server's (newest-created-first) and is never re-sorted locally.
type State struct {
	mu      sync.RWMutex
	order   []string
	byID    map[string]incident.Incident
	loadErr error
}

// New initializes an empty State.
func New() *State {
	return &State{
		byID: make(map[string]incident.Incident),
	}
}

// Replace rebuilds the collection from a fresh fetch, preserving the
// given order, and clears any load error. Duplicate ids violate the
// collection invariant and are rejected, leaving the State unchanged.
func (s *State) Replace(incidents []incident.Incident) error {
	byID := make(map[string]incident.Incident, len(incidents))
	order := make([]string, 0, len(incidents))
	for _, in := range incidents {
		if _, ok := byID[in.ID]; ok {
			return fmt.Errorf("%w: duplicate id %q in fetched collection", incident.ErrReconciliation, in.ID)
		}
		byID[in.ID] = in
		order = append(order, in.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = order
	s.byID = byID
	s.loadErr = nil
	return nil
}

// Apply merges one canonical updated record into the collection by id.
// An id the view does not know means the displayed list is stale
// relative to the server.
func (s *State) Apply(in incident.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[in.ID]; !ok {
		return fmt.Errorf("%w: id %q", incident.ErrReconciliation, in.ID)
	}
	s.byID[in.ID] = in
	return nil
}

// Get retrieves one incident by id.
func (s *State) Get(id string) (incident.Incident, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.byID[id]
	return in, ok
}

// List returns a copy of the collection in server order.
func (s *State) List() []incident.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]incident.Incident, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Len reports the number of incidents currently held.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// SetLoadError records a failed fetch so the view can distinguish
// "failed to load" from "no incidents". The previously loaded
// collection is kept as-is.
func (s *State) SetLoadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// LoadError returns the error from the last failed fetch, or nil if
// the last fetch succeeded.
func (s *State) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}
