// Package entry recognizes food-log entries in note text.
//
// A single Recognizer backs both the Parser, which turns matches into entries,
// and the highlight mapper, which turns the same matches into display ranges.
// Two forms are recognized, one per line, inline first:
//
//	#food Protein bar 210kcal 9fat 20prot   (inline literal values)
//	#food [[Oats]] 80g                      (linked to a nutrient note)
package entry

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/larder/pkg/nutrient"
	"github.com/aretw0/larder/pkg/units"
)

// DefaultTag is the tag used when none is configured.
const DefaultTag = "food"

// Form distinguishes the two entry syntaxes.
type Form int

const (
	FormInline Form = iota + 1
	FormLinked
)

func (f Form) String() string {
	switch f {
	case FormInline:
		return "inline"
	case FormLinked:
		return "linked"
	default:
		return "unknown"
	}
}

// Span is a half-open byte range [Start, End) into the scanned text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Token is one value+unit pair of an inline entry.
type Token struct {
	Span
	Field nutrient.Field
	Value float64
}

// Match is one recognized entry. Offsets are relative to the text passed to
// Scan (or to the line passed to MatchLine).
type Match struct {
	Form Form
	Line int
	Span Span

	// Inline form.
	Name   string
	Tokens []Token

	// Linked form.
	Reference string // resolvable part of the link, without alias or heading
	Link      string // raw text between the brackets
	Quantity  float64
	Unit      string // canonical unit
	Amount    Span   // quantity and unit
}

// Recognizer holds the patterns compiled for one tag. It only uses the
// stateless find APIs of regexp and is safe for concurrent use.
type Recognizer struct {
	tag    string
	inline *regexp.Regexp
	token  *regexp.Regexp
	linked *regexp.Regexp
}

var errEmptyTag = errors.New("tag cannot be empty")

// NormalizeTag trims whitespace and a leading '#'.
func NormalizeTag(tag string) string {
	return strings.TrimPrefix(strings.TrimSpace(tag), "#")
}

// ValidateTag reports whether tag can be used to build a recognizer.
func ValidateTag(tag string) error {
	tag = NormalizeTag(tag)
	if tag == "" {
		return errEmptyTag
	}
	if strings.IndexFunc(tag, unicode.IsSpace) >= 0 {
		return fmt.Errorf("tag %q contains whitespace", tag)
	}
	return nil
}

// NewRecognizer compiles the entry patterns for tag. The tag is matched literally.
func NewRecognizer(tag string) (*Recognizer, error) {
	if err := ValidateTag(tag); err != nil {
		return nil, err
	}
	tag = NormalizeTag(tag)
	quoted := regexp.QuoteMeta(tag)

	inlineUnits := alternation(nutrient.InlineUnits())
	token := `\d+(?:\.\d+)?(?i:` + inlineUnits + `)\b`

	inline, err := regexp.Compile(
		`#` + quoted + `[ \t]+(?:(\S+(?:[ \t]+\S+)*?)[ \t]+)??(` + token + `(?:[ \t]+` + token + `)*)`)
	if err != nil {
		return nil, fmt.Errorf("compile inline pattern: %w", err)
	}
	tokenRe, err := regexp.Compile(`(\d+(?:\.\d+)?)(?i:(` + inlineUnits + `))\b`)
	if err != nil {
		return nil, fmt.Errorf("compile token pattern: %w", err)
	}
	linked, err := regexp.Compile(
		`#` + quoted + `[ \t]+\[\[([^\[\]\n]+)\]\][ \t]+((\d+(?:\.\d+)?)[ \t]*(?i:(` + alternation(units.Known()) + `))\b)`)
	if err != nil {
		return nil, fmt.Errorf("compile linked pattern: %w", err)
	}

	return &Recognizer{tag: tag, inline: inline, token: tokenRe, linked: linked}, nil
}

// MustRecognizer is like NewRecognizer but panics on an invalid tag.
func MustRecognizer(tag string) *Recognizer {
	r, err := NewRecognizer(tag)
	if err != nil {
		panic(err)
	}
	return r
}

// Tag returns the normalized tag the recognizer was built for.
func (r *Recognizer) Tag() string { return r.tag }

// alternation joins words longest first so that no alternative shadows a longer one.
func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for i, w := range sorted {
		sorted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(sorted, "|")
}

// MatchLine returns the entries found on a single line. When the inline form
// matches, linked matches on the same line are ignored.
func (r *Recognizer) MatchLine(line string) []Match {
	line = strings.TrimSuffix(line, "\r")
	if !strings.Contains(line, "#"+r.tag) {
		return nil
	}
	if matches := r.matchInline(line); len(matches) > 0 {
		return matches
	}
	return r.matchLinked(line)
}

func (r *Recognizer) matchInline(line string) []Match {
	var out []Match
	for _, loc := range r.inline.FindAllStringSubmatchIndex(line, -1) {
		name := ""
		if loc[2] >= 0 {
			name = line[loc[2]:loc[3]]
		}
		if strings.HasPrefix(name, "[[") {
			continue
		}

		m := Match{
			Form: FormInline,
			Span: Span{Start: loc[0], End: loc[1]},
			Name: name,
		}
		valuesStart := loc[4]
		for _, tl := range r.token.FindAllStringSubmatchIndex(line[loc[4]:loc[5]], -1) {
			v, err := strconv.ParseFloat(line[valuesStart+tl[2]:valuesStart+tl[3]], 64)
			if err != nil {
				continue
			}
			f, ok := nutrient.FieldForInlineUnit(line[valuesStart+tl[4] : valuesStart+tl[5]])
			if !ok {
				continue
			}
			m.Tokens = append(m.Tokens, Token{
				Span:  Span{Start: valuesStart + tl[0], End: valuesStart + tl[1]},
				Field: f,
				Value: v,
			})
		}
		if len(m.Tokens) == 0 {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (r *Recognizer) matchLinked(line string) []Match {
	var out []Match
	for _, loc := range r.linked.FindAllStringSubmatchIndex(line, -1) {
		q, err := strconv.ParseFloat(line[loc[6]:loc[7]], 64)
		if err != nil {
			continue
		}
		link := line[loc[2]:loc[3]]
		ref := linkTarget(link)
		if ref == "" {
			continue
		}
		out = append(out, Match{
			Form:      FormLinked,
			Span:      Span{Start: loc[0], End: loc[1]},
			Reference: ref,
			Link:      link,
			Quantity:  q,
			Unit:      units.Canonical(line[loc[8]:loc[9]]),
			Amount:    Span{Start: loc[4], End: loc[5]},
		})
	}
	return out
}

// linkTarget strips an "|alias" or "#heading" suffix from a wiki link.
func linkTarget(link string) string {
	if i := strings.IndexAny(link, "|#"); i >= 0 {
		link = link[:i]
	}
	return strings.TrimSpace(link)
}

// Scan matches every line of text. Offsets in the result are absolute byte
// offsets into text and Line is zero-based.
func (r *Recognizer) Scan(text string) []Match {
	var out []Match
	forEachLine(text, func(n, start int, line string) {
		for _, m := range r.MatchLine(line) {
			out = append(out, m.shift(n, start))
		}
	})
	return out
}

func (m Match) shift(line, offset int) Match {
	m.Line = line
	m.Span = Span{Start: m.Span.Start + offset, End: m.Span.End + offset}
	m.Amount = Span{Start: m.Amount.Start + offset, End: m.Amount.End + offset}
	if m.Form != FormLinked {
		m.Amount = Span{}
	}
	if len(m.Tokens) > 0 {
		tokens := make([]Token, len(m.Tokens))
		for i, t := range m.Tokens {
			t.Span = Span{Start: t.Start + offset, End: t.End + offset}
			tokens[i] = t
		}
		m.Tokens = tokens
	}
	return m
}

// forEachLine calls fn with the zero-based index, starting byte offset and
// content (without the newline) of every line.
func forEachLine(text string, fn func(n, start int, line string)) {
	start := 0
	for n := 0; ; n++ {
		end := strings.IndexByte(text[start:], '\n')
		if end < 0 {
			fn(n, start, text[start:])
			return
		}
		fn(n, start, text[start:start+end])
		start += end + 1
	}
}
