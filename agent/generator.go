// Package agent writes narrative reports of a portfolio analysis with a
// generative text model.
//
// The analysis is serialized into a fixed prompt (BuildPrompt) that any
// Generator can answer: Gemini through an Expert, or Claude.
package agent

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a model answers with no text.
var ErrEmptyResponse = errors.New("empty response")

// Generator writes free text from a prompt. The text is not interpreted.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
