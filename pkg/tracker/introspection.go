package tracker

import (
	"time"

	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Tag            string     `json:"tag"`
	Nutrients      string     `json:"nutrients"`
	Records        int        `json:"records"`
	EventsApplied  int        `json:"events_applied"`
	LastEvent      *time.Time `json:"last_event,omitempty"`
	RepositoryType string     `json:"repository_type,omitempty"`
	Index          any        `json:"index"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := ServiceState{
		Tag:           s.current.Tag,
		Nutrients:     s.current.Nutrients,
		Records:       s.index.Len(),
		EventsApplied: s.applied,
		LastEvent:     s.lastEvent,
		Index:         s.index.State(),
	}
	if comp, ok := s.repo.(introspection.Component); ok {
		state.RepositoryType = comp.ComponentType()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "tracker"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
