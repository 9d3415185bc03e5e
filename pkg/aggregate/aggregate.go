// Package aggregate sums parsed entries into nutrient totals.
package aggregate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/larder/pkg/core"
	"github.com/aretw0/larder/pkg/entry"
	"github.com/aretw0/larder/pkg/nutrient"
	"github.com/aretw0/larder/pkg/units"
)

// Resolver finds the nutrient record a linked entry refers to.
// A miss is reported as an error wrapping core.ErrNotFound.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (nutrient.Record, error)
}

// Aggregator resolves and sums entries.
type Aggregator struct {
	resolver Resolver
	logger   *slog.Logger
}

// New creates an Aggregator. A nil logger discards output.
func New(resolver Resolver, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Aggregator{resolver: resolver, logger: logger}
}

// Aggregate sums linked and inline entries. ok is false only when there were
// no entries at all; entries that fail to resolve still count as logged and
// simply contribute nothing.
func (a *Aggregator) Aggregate(ctx context.Context, linked []entry.LinkedEntry, inline []entry.InlineEntry) (nutrient.Totals, bool) {
	if len(linked) == 0 && len(inline) == 0 {
		return nil, false
	}

	fromLinked := make(nutrient.Totals)
	for _, e := range linked {
		a.addLinked(ctx, fromLinked, e)
	}

	fromInline := make(nutrient.Totals)
	for _, e := range inline {
		fromInline.Merge(e.Values)
	}

	fromLinked.Merge(fromInline)
	return fromLinked, true
}

// AggregateResult is a convenience over Aggregate for a parse result.
func (a *Aggregator) AggregateResult(ctx context.Context, res entry.Result) (nutrient.Totals, bool) {
	return a.Aggregate(ctx, res.Linked, res.Inline)
}

func (a *Aggregator) addLinked(ctx context.Context, totals nutrient.Totals, e entry.LinkedEntry) {
	if a.resolver == nil {
		a.logger.Debug("no nutrient resolver configured", "reference", e.Reference)
		return
	}
	rec, err := a.resolver.Resolve(ctx, e.Reference)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			a.logger.Debug("nutrient not found", "reference", e.Reference, "line", e.Line)
		} else {
			a.logger.Warn("failed to read nutrient", "reference", e.Reference, "error", err)
		}
		return
	}

	m := units.Multiplier(e.Quantity, e.Unit)
	for _, f := range nutrient.Fields {
		if v, ok := rec.Value(f); ok {
			totals.Add(f, v*m)
		}
	}
}

// Combine merges totals from several sources. ok is false when every source
// reported no data.
func Combine(sources ...nutrient.Totals) (nutrient.Totals, bool) {
	var out nutrient.Totals
	for _, s := range sources {
		if s == nil {
			continue
		}
		if out == nil {
			out = make(nutrient.Totals)
		}
		out.Merge(s)
	}
	return out, out != nil
}
