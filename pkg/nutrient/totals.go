package nutrient

// Totals maps a field to its accumulated amount. A missing key means no entry
// mentioned the field, which is different from a key summing to zero.
type Totals map[Field]float64

// Add accumulates v into f.
func (t Totals) Add(f Field, v float64) {
	t[f] += v
}

// Get reports the accumulated value and whether anything contributed to it.
func (t Totals) Get(f Field) (float64, bool) {
	v, ok := t[f]
	return v, ok
}

// Merge adds every field of other into t.
func (t Totals) Merge(other Totals) {
	for f, v := range other {
		t[f] += v
	}
}

// Goals maps a field to a user supplied daily target.
type Goals map[Field]float64

// GoalsFromMap converts a keyed map (as decoded from settings or frontmatter) into Goals.
// Unknown keys and non-numeric values are ignored.
func GoalsFromMap(m map[string]any) Goals {
	goals := make(Goals)
	lower := lowerKeys(m)
	for _, f := range Fields {
		raw, ok := lookupField(lower, f)
		if !ok {
			continue
		}
		if v, ok := toFloat(raw); ok && v >= 0 {
			goals[f] = v
		}
	}
	return goals
}
