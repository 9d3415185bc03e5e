// Package format turns nutrient totals into a displayable summary with
// optional goal progress.
package format

import (
	"math"
	"strconv"

	"github.com/aretw0/larder/pkg/nutrient"
)

// Status classifies a value against its goal.
type Status string

const (
	StatusOnTarget Status = "on-target"
	StatusOver     Status = "over"
	StatusUnder    Status = "under"
)

// Goal ratio band considered on target.
const (
	LowerBound = 0.9
	UpperBound = 1.1
)

// Progress compares a value with its goal. Percent is clamped to 100 while
// Status uses the unclamped Ratio.
type Progress struct {
	Goal    float64 `json:"goal"`
	Ratio   float64 `json:"ratio"`
	Percent int     `json:"percent"`
	Status  Status  `json:"status"`
}

// Item is one displayed nutrient.
type Item struct {
	Field    nutrient.Field `json:"field"`
	Label    string         `json:"label"`
	Value    float64        `json:"value"`
	Display  string         `json:"display"`
	Unit     string         `json:"unit"`
	Icon     string         `json:"icon"`
	Progress *Progress      `json:"progress,omitempty"`
}

// Summary lists the displayed nutrients in canonical field order.
type Summary struct {
	Items []Item `json:"items"`
}

// Item returns the entry for f, if displayed.
func (s Summary) Item(f nutrient.Field) (Item, bool) {
	for _, it := range s.Items {
		if it.Field == f {
			return it, true
		}
	}
	return Item{}, false
}

// Format selects every field with a value strictly above zero. ok is false
// when nothing qualifies; callers should then remove any summary they show.
func Format(totals nutrient.Totals, goals nutrient.Goals) (Summary, bool) {
	var s Summary
	for _, f := range nutrient.Fields {
		v, ok := totals.Get(f)
		if !ok || !(v > 0) || math.IsInf(v, 0) {
			continue
		}
		it := Item{
			Field:   f,
			Label:   f.Label(),
			Value:   v,
			Display: Round(f, v),
			Unit:    f.Unit(),
			Icon:    f.Icon(),
		}
		if goal, ok := goals[f]; ok {
			p := Compare(v, goal)
			it.Progress = &p
		}
		s.Items = append(s.Items, it)
	}
	return s, len(s.Items) > 0
}

// Round renders v with the field's display precision. Halves round away
// from zero, matching Percent.
func Round(f nutrient.Field, v float64) string {
	scale := math.Pow(10, float64(f.Decimals()))
	return strconv.FormatFloat(math.Round(v*scale)/scale, 'f', f.Decimals(), 64)
}

// Compare computes progress of value towards goal. A zero goal yields ratio 0.
func Compare(value, goal float64) Progress {
	ratio := 0.0
	if goal > 0 {
		ratio = value / goal
	}
	p := Progress{
		Goal:    goal,
		Ratio:   ratio,
		Percent: int(math.Min(100, math.Round(ratio*100))),
	}
	switch {
	case ratio >= LowerBound && ratio <= UpperBound:
		p.Status = StatusOnTarget
	case ratio > UpperBound:
		p.Status = StatusOver
	default:
		p.Status = StatusUnder
	}
	return p
}
