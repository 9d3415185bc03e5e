package aggregate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/larder/pkg/aggregate"
	"github.com/aretw0/larder/pkg/core"
	"github.com/aretw0/larder/pkg/entry"
	"github.com/aretw0/larder/pkg/nutrient"
)

type stubResolver map[string]any

func (s stubResolver) Resolve(ctx context.Context, ref string) (nutrient.Record, error) {
	switch v := s[ref].(type) {
	case nutrient.Record:
		return v, nil
	case error:
		return nutrient.Record{}, v
	default:
		return nutrient.Record{}, fmt.Errorf("%s: %w", ref, core.ErrNotFound)
	}
}

func record(name string, values map[nutrient.Field]float64) nutrient.Record {
	return nutrient.Record{Name: name, StorageKey: "nutrients/" + name, Values: values}
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()
	resolver := stubResolver{
		"Oats":   record("Oats", map[nutrient.Field]float64{nutrient.Energy: 100, nutrient.Protein: 10}),
		"Broken": errors.New("permission denied"),
	}
	agg := aggregate.New(resolver, nil)

	t.Run("No Entries Is No Data", func(t *testing.T) {
		totals, ok := agg.Aggregate(ctx, nil, nil)
		assert.False(t, ok)
		assert.Nil(t, totals)
	})

	t.Run("Zero Sum Is Still Data", func(t *testing.T) {
		totals, ok := agg.Aggregate(ctx, nil, []entry.InlineEntry{{Values: nutrient.Totals{nutrient.Energy: 0}}})
		assert.True(t, ok)
		v, present := totals.Get(nutrient.Energy)
		assert.True(t, present)
		assert.Equal(t, 0.0, v)
	})

	t.Run("Mixed Sources", func(t *testing.T) {
		totals, ok := agg.Aggregate(ctx,
			[]entry.LinkedEntry{{Reference: "Oats", Quantity: 150, Unit: "g"}},
			[]entry.InlineEntry{{Values: nutrient.Totals{nutrient.Energy: 200}}},
		)
		require.True(t, ok)
		assert.InDelta(t, 350, totals[nutrient.Energy], 1e-9)
		assert.InDelta(t, 15, totals[nutrient.Protein], 1e-9)
		_, present := totals.Get(nutrient.Fat)
		assert.False(t, present, "untracked fields stay absent")
	})

	t.Run("Unit Conversions", func(t *testing.T) {
		cases := []struct {
			quantity float64
			unit     string
			want     float64
		}{
			{1.5, "kg", 1500},
			{1, "cup", 240},
			{1, "oz", 28.35},
		}
		for _, tc := range cases {
			totals, ok := agg.Aggregate(ctx, []entry.LinkedEntry{{Reference: "Oats", Quantity: tc.quantity, Unit: tc.unit}}, nil)
			require.True(t, ok)
			assert.InDelta(t, tc.want, totals[nutrient.Energy], 1e-9, tc.unit)
		}
	})

	t.Run("Misses And Failures Contribute Nothing", func(t *testing.T) {
		totals, ok := agg.Aggregate(ctx, []entry.LinkedEntry{
			{Reference: "Ghost", Quantity: 100, Unit: "g"},
			{Reference: "Broken", Quantity: 100, Unit: "g"},
			{Reference: "Oats", Quantity: 100, Unit: "g"},
		}, nil)
		require.True(t, ok)
		assert.Equal(t, 100.0, totals[nutrient.Energy])
	})

	t.Run("Only Misses Is Still Data", func(t *testing.T) {
		totals, ok := agg.Aggregate(ctx, []entry.LinkedEntry{{Reference: "Ghost", Quantity: 1, Unit: "g"}}, nil)
		assert.True(t, ok)
		assert.Empty(t, totals)
	})
}

func TestCombine(t *testing.T) {
	_, ok := aggregate.Combine(nil, nil)
	assert.False(t, ok)

	totals, ok := aggregate.Combine(
		nutrient.Totals{nutrient.Energy: 100},
		nil,
		nutrient.Totals{nutrient.Energy: 50, nutrient.Fat: 2},
	)
	require.True(t, ok)
	assert.Equal(t, nutrient.Totals{nutrient.Energy: 150, nutrient.Fat: 2}, totals)
}
