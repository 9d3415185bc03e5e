// Package units converts a logged quantity into a multiplier against the
// per-100 reference serving every nutrient record is stored in.
package units

import (
	"sort"
	"strings"
)

// ReferenceServing mirrors nutrient.ReferenceServing; records are normalized per 100 g or ml.
const ReferenceServing = 100.0

type unitKind string

const (
	kindMass   unitKind = "mass"
	kindVolume unitKind = "volume"
)

type unitDef struct {
	kind  unitKind
	grams float64
}

// Volumes use the density of water.
var unitTable = map[string]unitDef{
	"g":    {kind: kindMass, grams: 1},
	"kg":   {kind: kindMass, grams: 1000},
	"oz":   {kind: kindMass, grams: 28.35},
	"lb":   {kind: kindMass, grams: 453.6},
	"ml":   {kind: kindVolume, grams: 1},
	"l":    {kind: kindVolume, grams: 1000},
	"cup":  {kind: kindVolume, grams: 240},
	"tbsp": {kind: kindVolume, grams: 15},
	"tsp":  {kind: kindVolume, grams: 5},
}

var unitAliases = map[string]string{
	"cups": "cup",
}

// Canonical lowercases unit and folds plural spellings ("cups" → "cup").
func Canonical(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if alias, ok := unitAliases[u]; ok {
		return alias
	}
	return u
}

// Grams returns the gram equivalent of one unit, reporting whether the unit is known.
func Grams(unit string) (float64, bool) {
	def, ok := unitTable[Canonical(unit)]
	if !ok {
		return 1, false
	}
	return def.grams, true
}

// IsVolume reports whether unit measures volume rather than mass.
func IsVolume(unit string) bool {
	def, ok := unitTable[Canonical(unit)]
	return ok && def.kind == kindVolume
}

// Multiplier scales a per-100 record to quantity of unit.
// Unknown units are treated as grams.
func Multiplier(quantity float64, unit string) float64 {
	grams, _ := Grams(unit)
	return quantity * grams / ReferenceServing
}

// Known returns every accepted unit spelling, sorted. Used for suggestions
// and for building the linked-entry pattern.
func Known() []string {
	out := make([]string, 0, len(unitTable)+len(unitAliases))
	for u := range unitTable {
		out = append(out, u)
	}
	for u := range unitAliases {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
