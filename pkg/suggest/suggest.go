// Package suggest decides when the editor should offer completions for a
// food-log entry and ranks the candidates.
package suggest

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/larder/pkg/entry"
	"github.com/aretw0/larder/pkg/nutrient"
)

// Kind is what the user is typing.
type Kind string

const (
	// KindName completes a nutrient note name after "#tag ".
	KindName Kind = "name"
	// KindUnit completes a unit after "#tag [[ref]] 120".
	KindUnit Kind = "unit"
)

// Context describes an active completion. Start and End are byte offsets in
// the line; the editor replaces [Start, End) with the chosen insertion.
type Context struct {
	Kind  Kind   `json:"kind"`
	Query string `json:"query"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

var unitPrefix = regexp.MustCompile(`^\[\[[^\[\]]+\]\][ \t]+\d+(?:\.\d+)?[ \t]*([A-Za-z]*)$`)

// inlineValue matches a finished value+unit token of an inline entry.
var inlineValue = regexp.MustCompile(`(?:^|[ \t])\d+(?:\.\d+)?(?i:` + inlineUnits() + `)(?:[ \t]|$)`)

func inlineUnits() string {
	units := nutrient.InlineUnits()
	for i, u := range units {
		units[i] = regexp.QuoteMeta(u)
	}
	return strings.Join(units, "|")
}

// Trigger inspects line up to cursor (a byte offset) and reports whether a
// completion should open.
func Trigger(line string, cursor int, tag string) (Context, bool) {
	if cursor < 0 || cursor > len(line) {
		return Context{}, false
	}
	tag = entry.NormalizeTag(tag)
	if tag == "" {
		return Context{}, false
	}

	prefix := line[:cursor]
	marker := "#" + tag + " "
	idx := strings.LastIndex(prefix, marker)
	if idx < 0 {
		return Context{}, false
	}
	restStart := idx + len(marker)
	for restStart < cursor && (prefix[restStart] == ' ' || prefix[restStart] == '\t') {
		restStart++
	}
	rest := prefix[restStart:]

	if loc := unitPrefix.FindStringSubmatchIndex(rest); loc != nil {
		return Context{
			Kind:  KindUnit,
			Query: rest[loc[2]:loc[3]],
			Start: restStart + loc[2],
			End:   cursor,
		}, true
	}

	if strings.Contains(rest, "]]") || inlineValue.MatchString(rest) {
		return Context{}, false
	}
	return Context{
		Kind:  KindName,
		Query: strings.TrimSpace(strings.TrimPrefix(rest, "[[")),
		Start: restStart,
		End:   cursor,
	}, true
}

// Rank filters candidates by a case-insensitive query. Prefix matches come
// first, then substring matches; each group is sorted. limit <= 0 means all.
func Rank(candidates []string, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	var prefix, substr []string
	for _, c := range candidates {
		lc := strings.ToLower(c)
		switch {
		case strings.HasPrefix(lc, q):
			prefix = append(prefix, c)
		case strings.Contains(lc, q):
			substr = append(substr, c)
		}
	}
	sort.Strings(prefix)
	sort.Strings(substr)

	out := append(prefix, substr...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Insertion returns the text that replaces the context span.
func Insertion(ctx Context, choice string) string {
	if ctx.Kind == KindUnit {
		return choice
	}
	return "[[" + choice + "]] "
}
