// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Advisory is an informational note surfaced to the user during provisioning.
// Advisories never affect the pipeline outcome.
type Advisory struct {
	// Title is a short heading for the note.
	Title string
	// Markdown is the body, in markdown.
	Markdown string
}

// Render returns the advisory formatted for terminal display. The body is
// rendered with glamour; when rendering fails (e.g., no usable terminal
// profile), the raw markdown is returned so the note is never lost.
func (a Advisory) Render() string {
	var out strings.Builder
	if a.Title != "" {
		out.WriteString(a.Title)
		out.WriteString("\n")
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		out.WriteString(a.Markdown)
		return out.String()
	}

	body, err := r.Render(a.Markdown)
	if err != nil {
		out.WriteString(a.Markdown)
		return out.String()
	}

	out.WriteString(body)
	return out.String()
}
