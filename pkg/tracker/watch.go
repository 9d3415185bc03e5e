package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	lcadapter "github.com/aretw0/larder/pkg/adapters/lifecycle"
	"github.com/aretw0/larder/pkg/core"
)

// Apply folds one vault change into the nutrient index. Creates and modifies
// of selected notes re-read the note; deletes, renames (old ID) and notes
// moving out of the pattern retire it. Other notes are ignored.
func (s *Service) Apply(ctx context.Context, e core.Event) error {
	s.recordApplied()
	src := s.nutrientSource()

	if !src.settings.MatchesNutrient(e.ID) {
		s.index.Remove(e.ID)
		return nil
	}

	switch e.Type {
	case core.EventCreate, core.EventModify:
		err := s.index.UpsertFrom(ctx, src, e.ID)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("apply %s: %w", e, err)
		}
	case core.EventDelete, core.EventRename:
		s.index.Remove(e.ID)
	default:
		s.logger.Debug("ignoring unknown event", "type", e.Type, "id", e.ID)
	}
	return nil
}

func (s *Service) recordApplied() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied++
	now := time.Now()
	s.lastEvent = &now
}

// Run watches the vault and applies every change in the order it is received
// until ctx is cancelled or the watcher stops. Changes to one note keep their
// order; changes to different notes may be reordered by the watcher's debounce. The repository must be core.Watchable.
func (s *Service) Run(ctx context.Context) error {
	w, ok := s.repo.(core.Watchable)
	if !ok {
		return core.ErrNotWatchable
	}
	events, err := w.Watch(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to watch vault: %w", err)
	}

	src := lcadapter.NewSource(events)
	if err := src.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event source: %w", err)
	}

	s.logger.Debug("tracking vault changes")
	for ev := range src.Events() {
		e, ok := ev.(core.Event)
		if !ok {
			continue
		}
		if err := s.Apply(ctx, e); err != nil {
			s.logger.Warn("failed to apply vault change", "event", e.String(), "error", err)
		}
		if s.onApply != nil {
			s.onApply(e)
		}
	}
	return nil
}
