// Package tracker composes the nutrition engine: it keeps the nutrient index
// in sync with the vault, parses notes, aggregates and formats totals, and
// serves highlights and completions for the editor.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/larder/pkg/aggregate"
	"github.com/aretw0/larder/pkg/core"
	"github.com/aretw0/larder/pkg/entry"
	"github.com/aretw0/larder/pkg/format"
	"github.com/aretw0/larder/pkg/nutrient"
	"github.com/aretw0/larder/pkg/settings"
)

// Config wires a Service.
type Config struct {
	Repository core.Repository
	// Settings is shared with the host; nil means a store holding settings.Default().
	Settings *settings.Store
	Logger   *slog.Logger
	// OnApply is called by Run after each event has been applied.
	OnApply func(core.Event)
}

// Service is safe for concurrent use. Index mutations only happen through
// Refresh, Apply and settings changes.
type Service struct {
	repo    core.Repository
	store   *settings.Store
	logger  *slog.Logger
	index   *nutrient.Index
	agg     *aggregate.Aggregator
	onApply func(core.Event)

	mu          sync.RWMutex
	parser      *entry.Parser
	current     settings.Settings
	applied     int
	lastEvent   *time.Time
	unsubscribe func()
}

// New builds a Service. The index starts empty; call Refresh to fill it.
func New(cfg Config) (*Service, error) {
	if cfg.Repository == nil {
		return nil, errors.New("tracker requires a repository")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store := cfg.Settings
	if store == nil {
		store = settings.NewStore(settings.Default())
	}
	current := store.Get()

	parser, err := entry.NewParser(current.Tag, logger)
	if err != nil {
		return nil, fmt.Errorf("invalid tag: %w", err)
	}

	index := nutrient.NewIndex(logger)
	s := &Service{
		repo:    cfg.Repository,
		store:   store,
		logger:  logger,
		index:   index,
		agg:     aggregate.New(index, logger),
		onApply: cfg.OnApply,
		parser:  parser,
		current: current,
	}
	s.unsubscribe = store.Subscribe(s.settingsChanged)
	return s, nil
}

// Close detaches the service from the settings store.
func (s *Service) Close() {
	s.unsubscribe()
}

// Settings returns the settings the service currently applies.
func (s *Service) Settings() settings.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Index exposes the nutrient index.
func (s *Service) Index() *nutrient.Index { return s.index }

func (s *Service) settingsChanged(next settings.Settings) {
	s.mu.Lock()
	prev := s.current
	s.current = next
	if next.Tag != prev.Tag {
		parser, err := entry.NewParser(next.Tag, s.logger)
		if err != nil {
			s.logger.Error("ignoring invalid tag", "tag", next.Tag, "error", err)
		} else {
			s.parser = parser
			s.logger.Debug("entry tag changed", "from", prev.Tag, "to", next.Tag)
		}
	}
	s.mu.Unlock()

	if next.Nutrients != prev.Nutrients {
		s.logger.Debug("nutrient pattern changed", "from", prev.Nutrients, "to", next.Nutrients)
		if err := s.Refresh(context.Background()); err != nil {
			s.logger.Error("refresh after settings change failed", "error", err)
		}
	}
}

func (s *Service) currentParser() *entry.Parser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parser
}

// Refresh rebuilds the nutrient index from every selected note.
func (s *Service) Refresh(ctx context.Context) error {
	return s.index.Refresh(ctx, s.nutrientSource())
}

// Names returns the known nutrient display names, sorted.
func (s *Service) Names() []string {
	return s.index.NamesSorted()
}

// Report is the outcome of one recomputation pass.
type Report struct {
	Entries entry.Result    `json:"entries"`
	Totals  nutrient.Totals `json:"totals,omitempty"`
	Summary format.Summary  `json:"summary"`
	// HasData is false when the text holds no entries at all.
	HasData bool `json:"has_data"`
}

// Compute parses text, aggregates its entries and formats the totals with the
// current goals. ok is false when there is nothing to display. A panic in any
// stage is recovered, logged and reported as no data.
func (s *Service) Compute(ctx context.Context, text string) (rep Report, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("compute panic: %v", r)
			if s.logger.Enabled(ctx, slog.LevelDebug) {
				s.logger.Error("recompute failed", "error", err, "stack", string(debug.Stack()))
			} else {
				s.logger.Error("recompute failed", "error", err)
			}
			rep, ok = Report{}, false
		}
	}()

	rep.Entries = s.currentParser().Parse(text)
	totals, hasData := s.agg.AggregateResult(ctx, rep.Entries)
	if !hasData {
		return rep, false
	}
	rep.Totals = totals
	rep.HasData = true

	summary, ok := format.Format(totals, s.Goals(ctx))
	rep.Summary = summary
	return rep, ok
}

// ComputeNote runs Compute over a note's body. Only a failure to read the
// note is returned as an error.
func (s *Service) ComputeNote(ctx context.Context, id string) (Report, bool, error) {
	doc, err := s.Document(ctx, id)
	if err != nil {
		return Report{}, false, err
	}
	rep, ok := s.Compute(ctx, doc.Content)
	return rep, ok, nil
}

// Document reads a note from the vault.
func (s *Service) Document(ctx context.Context, id string) (core.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return core.Document{}, fmt.Errorf("read note %s: %w", id, err)
	}
	return doc, nil
}

// Highlights returns the display ranges for the visible windows of text.
func (s *Service) Highlights(text string, windows ...entry.Span) []entry.Range {
	return s.currentParser().Recognizer().Ranges(text, windows...)
}

// Goals merges the configured goals with the goals note, whose frontmatter
// wins field by field. A missing or unreadable goals note is logged.
func (s *Service) Goals(ctx context.Context) nutrient.Goals {
	cur := s.Settings()
	goals := cur.GoalSet()
	if cur.GoalsNote == "" {
		return goals
	}

	doc, err := s.repo.Get(ctx, cur.GoalsNote)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.logger.Debug("goals note not found", "id", cur.GoalsNote)
		} else {
			s.logger.Warn("failed to read goals note", "id", cur.GoalsNote, "error", err)
		}
		return goals
	}
	for f, v := range nutrient.GoalsFromMap(doc.Metadata) {
		goals[f] = v
	}
	return goals
}
