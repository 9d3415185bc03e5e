package format_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/larder/pkg/format"
	"github.com/aretw0/larder/pkg/nutrient"
)

func TestFormat(t *testing.T) {
	t.Run("Empty When Nothing Positive", func(t *testing.T) {
		_, ok := format.Format(nil, nil)
		assert.False(t, ok)

		_, ok = format.Format(nutrient.Totals{nutrient.Energy: 0, nutrient.Fat: 0}, nil)
		assert.False(t, ok)
	})

	t.Run("Canonical Order And Rounding", func(t *testing.T) {
		s, ok := format.Format(nutrient.Totals{
			nutrient.Sodium: 12.34,
			nutrient.Fat:    5,
			nutrient.Energy: 28.35,
			nutrient.Fiber:  0,
		}, nil)
		require.True(t, ok)
		require.Len(t, s.Items, 3)

		assert.Equal(t, nutrient.Energy, s.Items[0].Field)
		assert.Equal(t, "28", s.Items[0].Display)
		assert.Equal(t, "kcal", s.Items[0].Unit)
		assert.Equal(t, nutrient.Fat, s.Items[1].Field)
		assert.Equal(t, "5.0", s.Items[1].Display)
		assert.Equal(t, nutrient.Sodium, s.Items[2].Field)
		assert.Equal(t, "12.3", s.Items[2].Display)
		assert.Equal(t, "mg", s.Items[2].Unit)
		assert.Nil(t, s.Items[0].Progress)

		ties := []struct {
			field nutrient.Field
			value float64
			want  string
		}{
			{nutrient.Energy, 120.5, "121"},
			{nutrient.Energy, 2.5, "3"},
			{nutrient.Energy, 119.49, "119"},
			{nutrient.Fat, 0.25, "0.3"},
			{nutrient.Protein, 1.75, "1.8"},
		}
		for _, tc := range ties {
			assert.Equal(t, tc.want, format.Round(tc.field, tc.value), "%s %v", tc.field, tc.value)
		}
	})

	t.Run("Goal Progress", func(t *testing.T) {
		s, ok := format.Format(
			nutrient.Totals{nutrient.Energy: 1800, nutrient.Protein: 30},
			nutrient.Goals{nutrient.Energy: 2000},
		)
		require.True(t, ok)

		energy, _ := s.Item(nutrient.Energy)
		require.NotNil(t, energy.Progress)
		assert.Equal(t, 90, energy.Progress.Percent)
		assert.Equal(t, format.StatusOnTarget, energy.Progress.Status)

		protein, _ := s.Item(nutrient.Protein)
		assert.Nil(t, protein.Progress, "no goal, no progress")
	})
}

func TestCompare(t *testing.T) {
	cases := []struct {
		name    string
		value   float64
		goal    float64
		status  format.Status
		percent int
	}{
		{"Lower Bound", 45, 50, format.StatusOnTarget, 90},
		{"Upper Bound", 55, 50, format.StatusOnTarget, 100},
		{"Over Clamped", 56, 50, format.StatusOver, 100},
		{"Under", 40, 50, format.StatusUnder, 80},
		{"Zero Goal", 40, 0, format.StatusUnder, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := format.Compare(tc.value, tc.goal)
			assert.Equal(t, tc.status, p.Status)
			assert.Equal(t, tc.percent, p.Percent)
		})
	}

	t.Run("Ratio Is Unclamped", func(t *testing.T) {
		assert.InDelta(t, 1.12, format.Compare(56, 50).Ratio, 1e-9)
	})
}

func TestRender(t *testing.T) {
	s, ok := format.Format(
		nutrient.Totals{nutrient.Energy: 120, nutrient.Fat: 5},
		nutrient.Goals{nutrient.Fat: 4},
	)
	require.True(t, ok)

	t.Run("Text", func(t *testing.T) {
		assert.Equal(t, "🔥 120 kcal · 🧈 5.0 g (100%)", format.Text(s))
	})

	t.Run("Markup", func(t *testing.T) {
		html, err := format.Markup(s)
		require.NoError(t, err)
		assert.Contains(t, html, `<div class="larder-summary">`)
		assert.Contains(t, html, `larder-item larder-energy"`)
		assert.Contains(t, html, `larder-fat larder-progress larder-over"`)
		assert.Contains(t, html, `--progress: 100%`)
		assert.Contains(t, html, `<span class="larder-value">5.0</span>`)
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := json.Marshal(s)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"field":"energy"`)
		assert.Contains(t, string(data), `"status":"over"`)
	})
}
