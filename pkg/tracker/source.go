package tracker

import (
	"context"

	"github.com/aretw0/larder/pkg/core"
	"github.com/aretw0/larder/pkg/settings"
)

// nutrientSource narrows the vault to the notes selected by the nutrient pattern.
type nutrientSource struct {
	repo     core.Repository
	settings settings.Settings
}

func (s *Service) nutrientSource() nutrientSource {
	return nutrientSource{repo: s.repo, settings: s.Settings()}
}

func (n nutrientSource) Keys(ctx context.Context) ([]string, error) {
	keys, err := n.repo.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if n.settings.MatchesNutrient(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (n nutrientSource) Get(ctx context.Context, id string) (core.Document, error) {
	return n.repo.Get(ctx, id)
}
