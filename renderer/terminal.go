package renderer

import (
	"github.com/charmbracelet/glamour"
)

// Terminal renders markdown for a terminal. style is a glamour standard
// style ("dark", "light", "notty", ...) or "auto" to detect it.
func Terminal(markdown, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
