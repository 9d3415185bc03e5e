package entry

import "sort"

// RangeKind tells the renderer how to style a highlight.
type RangeKind string

const (
	// RangeValue marks one value+unit token of an inline entry.
	RangeValue RangeKind = "value"
	// RangeAmount marks the quantity+unit of a linked entry.
	RangeAmount RangeKind = "amount"
)

// Range is a highlight over [Start, End) of the document text.
type Range struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Kind  RangeKind `json:"kind"`
}

// Ranges computes highlight ranges for the lines of text that intersect any
// of the windows (byte spans, typically the editor's visible ranges). With no
// windows the whole text is scanned. The output is sorted by position.
func (r *Recognizer) Ranges(text string, windows ...Span) []Range {
	var out []Range

	forEachLine(text, func(n, start int, line string) {
		end := start + len(line)
		if !visible(start, end, windows) {
			return
		}
		for _, m := range r.MatchLine(line) {
			m = m.shift(n, start)
			switch m.Form {
			case FormInline:
				for _, t := range m.Tokens {
					out = append(out, Range{Start: t.Start, End: t.End, Kind: RangeValue})
				}
			case FormLinked:
				out = append(out, Range{Start: m.Amount.Start, End: m.Amount.End, Kind: RangeAmount})
			}
		}
	})

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}

// visible reports whether the line [start, end] overlaps any window. An
// empty window (a caret) selects the line it sits on.
func visible(start, end int, windows []Span) bool {
	if len(windows) == 0 {
		return true
	}
	for _, w := range windows {
		if w.Start == w.End {
			if start <= w.Start && w.Start <= end {
				return true
			}
			continue
		}
		if start < w.End && end >= w.Start {
			return true
		}
	}
	return false
}
