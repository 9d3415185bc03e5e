// Package nutrient defines the tracked nutrient fields, the per-100 reference
// record read from note frontmatter, and the in-memory index of those records.
package nutrient

import (
	"fmt"
	"strings"
)

// Field identifies one tracked nutrient.
type Field int

const (
	Energy Field = iota
	Fat
	Protein
	Carbs
	Fiber
	Sugar
	Sodium
)

// Fields lists every tracked field in canonical display order.
var Fields = []Field{Energy, Fat, Protein, Carbs, Fiber, Sugar, Sodium}

type fieldInfo struct {
	key      string
	label    string
	unit     string
	icon     string
	decimals int
	inline   string   // abbreviation accepted in inline entries; empty when not inline-recognized
	aliases  []string // frontmatter keys, in precedence order
}

var fieldTable = [...]fieldInfo{
	Energy:  {key: "energy", label: "Energy", unit: "kcal", icon: "🔥", decimals: 0, inline: "kcal", aliases: []string{"calories", "energy", "kcal"}},
	Fat:     {key: "fat", label: "Fat", unit: "g", icon: "🧈", decimals: 1, inline: "fat", aliases: []string{"fat"}},
	Protein: {key: "protein", label: "Protein", unit: "g", icon: "🥩", decimals: 1, inline: "prot", aliases: []string{"protein", "prot"}},
	Carbs:   {key: "carbs", label: "Carbs", unit: "g", icon: "🍞", decimals: 1, inline: "carbs", aliases: []string{"carbs", "carbohydrates", "carbohydrate"}},
	Fiber:   {key: "fiber", label: "Fiber", unit: "g", icon: "🌾", decimals: 1, aliases: []string{"fiber", "fibre"}},
	Sugar:   {key: "sugar", label: "Sugar", unit: "g", icon: "🍯", decimals: 1, inline: "sugar", aliases: []string{"sugar", "sugars"}},
	Sodium:  {key: "sodium", label: "Sodium", unit: "mg", icon: "🧂", decimals: 1, aliases: []string{"sodium"}},
}

func (f Field) valid() bool { return f >= Energy && f <= Sodium }

// Key is the canonical lowercase name, used in settings, JSON output and markup.
func (f Field) Key() string {
	if !f.valid() {
		return ""
	}
	return fieldTable[f].key
}

func (f Field) String() string { return f.Key() }

// Label is the human readable name.
func (f Field) Label() string {
	if !f.valid() {
		return ""
	}
	return fieldTable[f].label
}

// Unit is the display unit label (kcal, g or mg).
func (f Field) Unit() string {
	if !f.valid() {
		return ""
	}
	return fieldTable[f].unit
}

// Icon is the glyph shown before the value in summaries.
func (f Field) Icon() string {
	if !f.valid() {
		return ""
	}
	return fieldTable[f].icon
}

// Decimals is the number of decimal places used when displaying a value.
func (f Field) Decimals() int {
	if !f.valid() {
		return 0
	}
	return fieldTable[f].decimals
}

// InlineUnit returns the abbreviation recognized in inline entries.
// Fiber and sodium are only available through linked entries.
func (f Field) InlineUnit() (string, bool) {
	if !f.valid() || fieldTable[f].inline == "" {
		return "", false
	}
	return fieldTable[f].inline, true
}

// MarshalText implements encoding.TextMarshaler.
func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting any alias.
func (f *Field) UnmarshalText(text []byte) error {
	parsed, ok := ParseField(string(text))
	if !ok {
		return fmt.Errorf("unknown nutrient field %q", string(text))
	}
	*f = parsed
	return nil
}

// ParseField resolves a canonical key or any known alias, case-insensitively.
func ParseField(s string) (Field, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Fields {
		if fieldTable[f].key == s {
			return f, true
		}
		for _, alias := range fieldTable[f].aliases {
			if alias == s {
				return f, true
			}
		}
	}
	return 0, false
}

// FieldForInlineUnit maps an inline abbreviation (kcal, fat, prot, carbs, sugar) to its field.
func FieldForInlineUnit(unit string) (Field, bool) {
	unit = strings.ToLower(unit)
	for _, f := range Fields {
		if abbr, ok := f.InlineUnit(); ok && abbr == unit {
			return f, true
		}
	}
	return 0, false
}

// InlineUnits lists the inline abbreviations in canonical field order.
func InlineUnits() []string {
	var out []string
	for _, f := range Fields {
		if abbr, ok := f.InlineUnit(); ok {
			out = append(out, abbr)
		}
	}
	return out
}
