package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	p, err := BuildPrompt(testReport())
	require.NoError(t, err)

	for _, want := range []string{
		"as of 2025-06-30",
		"| Company | Ticker | Sector | Weight |",
		"| Banco do Brasil | BBAS3.SA | Financeiro | 50% | R$",
		"| 2.50 | 10.00% | 12.50% | N/A | 4.50 | 0.80 | 21.00% | BRL 150.00B |",
		"| XXXX3.SA | XXXX3.SA | Unknown | 50% | error |",
		"- BBAS3.SA: 10.00%",
		"- XXXX3.SA: error",
		"Weighted average dividend yield of the portfolio: 10.00%",
		"- Financeiro: 50.00%",
		"Performance could not be computed",
		"- XXXX3.SA: cannot fetch market data: unknown ticker",
	} {
		assert.Contains(t, p, want)
	}
}

func TestNarrate(t *testing.T) {
	var got string
	g := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		got = prompt
		return "narrative", nil
	})
	text, err := Narrate(context.Background(), g, testReport())
	require.NoError(t, err)
	assert.Equal(t, "narrative", text)
	assert.Contains(t, got, "Weighted average dividend yield")
}
