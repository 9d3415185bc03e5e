package tracker

import (
	"github.com/aretw0/larder/pkg/suggest"
	"github.com/aretw0/larder/pkg/units"
)

// Suggestion is an open completion with its ranked candidates.
type Suggestion struct {
	suggest.Context
	Candidates []string `json:"candidates"`
}

// Suggest reports the completion for a cursor position in line (byte offset):
// nutrient names after the tag, units after a linked amount.
func (s *Service) Suggest(line string, cursor, limit int) (Suggestion, bool) {
	ctx, ok := suggest.Trigger(line, cursor, s.Settings().Tag)
	if !ok {
		return Suggestion{}, false
	}
	candidates := s.Names()
	if ctx.Kind == suggest.KindUnit {
		candidates = units.Known()
	}
	return Suggestion{Context: ctx, Candidates: suggest.Rank(candidates, ctx.Query, limit)}, true
}
