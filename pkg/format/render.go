package format

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// Separator joins items in the text rendering.
const Separator = " · "

// Text renders a single status-bar line, e.g. "🔥 350 kcal (18%) · 🧈 5.0 g".
func Text(s Summary) string {
	parts := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		part := fmt.Sprintf("%s %s %s", it.Icon, it.Display, it.Unit)
		if it.Progress != nil {
			part += fmt.Sprintf(" (%d%%)", it.Progress.Percent)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, Separator)
}

var markupTmpl = template.Must(template.New("summary").Parse(
	`<div class="larder-summary">` +
		`{{range .Items}}` +
		`<span class="larder-item larder-{{.Field.Key}}{{with .Progress}} larder-progress larder-{{.Status}}{{end}}"` +
		`{{with .Progress}} style="--progress: {{.Percent}}%"{{end}} title="{{.Label}}">` +
		`<span class="larder-icon">{{.Icon}}</span>` +
		`<span class="larder-value">{{.Display}}</span>` +
		`<span class="larder-unit">{{.Unit}}</span>` +
		`</span>` +
		`{{end}}` +
		`</div>`))

// Markup renders an HTML fragment. Items with a goal carry a status class and
// a --progress custom property for the stylesheet.
func Markup(s Summary) (string, error) {
	var buf bytes.Buffer
	if err := markupTmpl.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("render summary markup: %w", err)
	}
	return buf.String(), nil
}
