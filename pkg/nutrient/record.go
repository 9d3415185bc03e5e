package nutrient

import (
	"encoding/json"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/aretw0/larder/pkg/core"
)

// ReferenceServing is the amount (grams or millilitres) every record is normalized to.
const ReferenceServing = 100.0

// Record is one food's nutrition profile per ReferenceServing.
type Record struct {
	// Name is the display name used by linked entries.
	Name string `json:"name"`
	// StorageKey is the ID of the note the record was read from.
	StorageKey string `json:"storage_key"`
	// Values holds only the fields the note tracks.
	Values map[Field]float64 `json:"values"`
}

// Value returns the per-100 amount for f and whether the record tracks it.
func (r Record) Value(f Field) (float64, bool) {
	v, ok := r.Values[f]
	return v, ok
}

// FromDocument builds a record from a note. The display name comes from the
// "name" (or "title") frontmatter key and falls back to the note's basename.
func FromDocument(doc core.Document) Record {
	lower := lowerKeys(doc.Metadata)

	name := ""
	for _, key := range []string{"name", "title"} {
		if s, ok := lower[key].(string); ok && strings.TrimSpace(s) != "" {
			name = strings.TrimSpace(s)
			break
		}
	}
	if name == "" {
		name = path.Base(strings.TrimSuffix(doc.ID, path.Ext(doc.ID)))
	}

	rec := Record{
		Name:       name,
		StorageKey: doc.ID,
		Values:     make(map[Field]float64),
	}
	for _, f := range Fields {
		raw, ok := lookupField(lower, f)
		if !ok {
			continue
		}
		v, _ := toFloat(raw)
		if v < 0 {
			v = 0
		}
		rec.Values[f] = v
	}
	return rec
}

// Metadata renders the record as frontmatter using canonical source keys.
func (r Record) Metadata() core.Metadata {
	meta := core.Metadata{"name": r.Name}
	for _, f := range Fields {
		v, ok := r.Values[f]
		if !ok {
			continue
		}
		key := f.Key()
		if f == Energy {
			key = "calories"
		}
		meta[key] = v
	}
	return meta
}

func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		lk := strings.ToLower(strings.TrimSpace(k))
		if _, dup := out[lk]; dup && lk != k {
			// Exact lowercase spelling wins over other casings.
			continue
		}
		out[lk] = v
	}
	return out
}

// lookupField finds the first alias of f present in lower (keys already lowercased).
func lookupField(lower map[string]any, f Field) (any, bool) {
	if !f.valid() {
		return nil, false
	}
	for _, alias := range fieldTable[f].aliases {
		if v, ok := lower[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// toFloat coerces frontmatter values. Numeric strings are accepted; anything
// else (including NaN and infinities) normalizes to 0 with ok=false.
func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case uint:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
