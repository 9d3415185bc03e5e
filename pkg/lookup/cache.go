package lookup

import (
	"context"
	"log/slog"
	"strings"
)

// Cache stores search results by normalized query.
type Cache interface {
	Get(ctx context.Context, query string) ([]Food, bool, error)
	Put(ctx context.Context, query string, foods []Food) error
}

// Cached consults Cache before Source and stores fresh results.
// Cache failures are logged and never fail a search.
type Cached struct {
	Source Searcher
	Cache  Cache
	Logger *slog.Logger
}

var _ Searcher = (*Cached)(nil)

// NormalizeQuery folds case and whitespace so equivalent queries share a cache entry.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// Search serves from the cache when the stored list can satisfy limit and
// otherwise fetches at least DefaultLimit results. A stored list shorter than
// DefaultLimit is complete and satisfies any limit.
func (c *Cached) Search(ctx context.Context, query string, limit int) ([]Food, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	key := NormalizeQuery(query)

	if c.Cache != nil {
		foods, ok, err := c.Cache.Get(ctx, key)
		switch {
		case err != nil:
			logger.Warn("lookup cache read failed", "query", key, "error", err)
		case ok && (len(foods) >= limit || len(foods) < DefaultLimit):
			logger.Debug("lookup cache hit", "query", key, "results", len(foods))
			return truncate(foods, limit), nil
		case ok:
			logger.Debug("lookup cache too short", "query", key, "results", len(foods), "limit", limit)
		}
	}

	foods, err := c.Source.Search(ctx, query, max(limit, DefaultLimit))
	if err != nil {
		return nil, err
	}
	if c.Cache != nil {
		if err := c.Cache.Put(ctx, key, foods); err != nil {
			logger.Warn("lookup cache write failed", "query", key, "error", err)
		}
	}
	return truncate(foods, limit), nil
}

func truncate(foods []Food, limit int) []Food {
	if limit > 0 && len(foods) > limit {
		return foods[:limit]
	}
	return foods
}
