// Package lookup fetches nutrient profiles from an external food database
// (Open Food Facts) so users can create nutrient notes without typing values.
package lookup

import (
	"path"
	"strings"
	"unicode"

	"github.com/aretw0/larder/pkg/core"
	"github.com/aretw0/larder/pkg/nutrient"
)

// SourceName is written to the frontmatter of notes created from a lookup.
const SourceName = "openfoodfacts"

// Food is one product returned by a lookup, with values per 100 g or ml.
type Food struct {
	Code   string                     `json:"code,omitempty"`
	Name   string                     `json:"name"`
	Brand  string                     `json:"brand,omitempty"`
	Values map[nutrient.Field]float64 `json:"values"`
}

// Record converts the food to a nutrient record keyed by its display name.
func (f Food) Record() nutrient.Record {
	values := make(map[nutrient.Field]float64, len(f.Values))
	for k, v := range f.Values {
		values[k] = v
	}
	return nutrient.Record{Name: f.DisplayName(), Values: values}
}

// DisplayName appends the brand when present, e.g. "Rolled Oats (Quaker)".
func (f Food) DisplayName() string {
	name := strings.TrimSpace(f.Name)
	if brand := strings.TrimSpace(f.Brand); brand != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(brand)) {
		return name + " (" + brand + ")"
	}
	return name
}

// Document renders the food as a nutrient note stored under dir.
func (f Food) Document(dir string) core.Document {
	rec := f.Record()
	meta := rec.Metadata()
	meta["source"] = SourceName
	if f.Code != "" {
		meta["code"] = f.Code
	}
	id := Slug(rec.Name)
	if dir != "" {
		id = path.Join(dir, id)
	}
	return core.Document{
		ID:       id,
		Content:  "\n# " + rec.Name + "\n\nValues per 100 g.\n",
		Metadata: meta,
	}
}

// Slug turns a display name into a file-system friendly note name.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "food"
	}
	return s
}
