package units_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/larder/pkg/units"
)

func TestMultiplier(t *testing.T) {
	cases := []struct {
		name     string
		quantity float64
		unit     string
		want     float64
	}{
		{"100 Grams Is Identity", 100, "g", 1},
		{"Kilograms", 1.5, "kg", 15},
		{"Millilitres", 250, "ml", 2.5},
		{"Litres", 1, "L", 10},
		{"Ounce", 1, "oz", 0.2835},
		{"Pound", 1, "lb", 4.536},
		{"Cup", 1, "cup", 2.4},
		{"Cups Plural", 2, "Cups", 4.8},
		{"Tablespoon", 2, "tbsp", 0.3},
		{"Teaspoon", 1, "TSP", 0.05},
		{"Unknown Falls Back To Grams", 50, "handful", 0.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, units.Multiplier(tc.quantity, tc.unit), 1e-9)
		})
	}
}

func TestMultiplierGramIdentityExact(t *testing.T) {
	assert.Equal(t, 1.0, units.Multiplier(100, "g"))
}

func TestGrams(t *testing.T) {
	g, ok := units.Grams("Cups")
	assert.True(t, ok)
	assert.Equal(t, 240.0, g)

	_, ok = units.Grams("pinch")
	assert.False(t, ok)

	assert.True(t, units.IsVolume("ml"))
	assert.False(t, units.IsVolume("kg"))
}

func TestKnown(t *testing.T) {
	assert.Equal(t,
		[]string{"cup", "cups", "g", "kg", "l", "lb", "ml", "oz", "tbsp", "tsp"},
		units.Known())
}
