package agent

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/etnz/dividends"
)

//go:embed prompt.tmpl
var promptText string

var promptTemplate = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"price": dividends.Price,
	"cap":   dividends.Capitalization,
	"weight": func(w float64) string {
		return fmt.Sprintf("%.0f%%", w*100)
	},
	"ratio": func(r float64) string { return dividends.Ratio(r).String() },
	"sector": func(s string) string {
		if s == "" {
			return dividends.UnknownSector
		}
		return s
	},
}).Parse(promptText))

// BuildPrompt returns the request for a narrative report of r. It always
// has the same structure: the metrics of every position, the individual
// yields and the weighted average yield.
func BuildPrompt(r *dividends.Report) (string, error) {
	var b strings.Builder
	if err := promptTemplate.Execute(&b, r); err != nil {
		return "", fmt.Errorf("cannot build prompt: %w", err)
	}
	return b.String(), nil
}

// Narrate builds the prompt of r and asks g for the narrative.
func Narrate(ctx context.Context, g Generator, r *dividends.Report) (string, error) {
	prompt, err := BuildPrompt(r)
	if err != nil {
		return "", err
	}
	return g.Generate(ctx, prompt)
}
