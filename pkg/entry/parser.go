package entry

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/aretw0/larder/pkg/nutrient"
)

// LinkedEntry references a nutrient note plus the amount eaten.
type LinkedEntry struct {
	Reference string  `json:"reference"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	Line      int     `json:"line"`
}

// InlineEntry carries literal nutrient values typed in the note.
type InlineEntry struct {
	Name   string          `json:"name,omitempty"`
	Values nutrient.Totals `json:"values"`
	Line   int             `json:"line"`
}

// Result holds every entry found in one parse pass, in document order.
type Result struct {
	Linked []LinkedEntry `json:"linked"`
	Inline []InlineEntry `json:"inline"`
}

// Len returns the total number of entries.
func (r Result) Len() int { return len(r.Linked) + len(r.Inline) }

// Parser turns note text into entries.
type Parser struct {
	rec    *Recognizer
	logger *slog.Logger
}

// NewParser builds a parser for tag. A nil logger discards output.
func NewParser(tag string, logger *slog.Logger) (*Parser, error) {
	rec, err := NewRecognizer(tag)
	if err != nil {
		return nil, err
	}
	return NewParserFor(rec, logger), nil
}

// NewParserFor wraps an existing recognizer.
func NewParserFor(rec *Recognizer, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{rec: rec, logger: logger}
}

// Recognizer returns the recognizer shared with the highlight mapper.
func (p *Parser) Recognizer() *Recognizer { return p.rec }

// Parse scans text line by line. Lines matching neither form are skipped.
// A failure while scanning is logged and yields an empty result.
func (p *Parser) Parse(text string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("entry scan panic: %v", r)
			if p.logger.Enabled(context.Background(), slog.LevelDebug) {
				p.logger.Error("entry scan failed", "error", err, "stack", string(debug.Stack()))
			} else {
				p.logger.Error("entry scan failed", "error", err)
			}
			res = Result{}
		}
	}()

	for _, m := range p.rec.Scan(text) {
		switch m.Form {
		case FormInline:
			values := make(nutrient.Totals, len(m.Tokens))
			for _, t := range m.Tokens {
				values.Add(t.Field, t.Value)
			}
			res.Inline = append(res.Inline, InlineEntry{Name: m.Name, Values: values, Line: m.Line})
		case FormLinked:
			res.Linked = append(res.Linked, LinkedEntry{
				Reference: m.Reference,
				Quantity:  m.Quantity,
				Unit:      m.Unit,
				Line:      m.Line,
			})
		}
	}
	return res
}
