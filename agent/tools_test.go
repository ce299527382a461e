package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestReportTools(t *testing.T) {
	lib := NewLibrary(reportTools(testReport()))
	ctx := context.Background()

	resp := lib(ctx, &genai.FunctionCall{ID: "1", Name: "position", Args: map[string]any{"ticker": "bbas3.sa"}})
	require.NotNil(t, resp)
	assert.Equal(t, "1", resp.ID)
	assert.Contains(t, resp.Response["output"], "BBAS3.SA")

	resp = lib(ctx, &genai.FunctionCall{ID: "2", Name: "position", Args: map[string]any{"ticker": "PETR4.SA"}})
	assert.Contains(t, resp.Response["error"], "BBAS3.SA, XXXX3.SA")

	resp = lib(ctx, &genai.FunctionCall{ID: "3", Name: "position", Args: map[string]any{"ticker": 3}})
	assert.Contains(t, resp.Response["error"], "not a string")

	resp = lib(ctx, &genai.FunctionCall{ID: "4", Name: "cash_flow"})
	assert.Contains(t, resp.Response["output"], "2025-05-12")

	resp = lib(ctx, &genai.FunctionCall{ID: "5", Name: "missing"})
	assert.Contains(t, resp.Response["error"], "unknown function")
}

func TestNewAnalyst(t *testing.T) {
	e := NewAnalyst(testReport(), "")
	assert.Equal(t, DefaultGeminiModel, e.ModelName)
	require.Len(t, e.Config.Tools, 1)
	assert.Len(t, e.Config.Tools[0].FunctionDeclarations, 2)

	_, err := e.AskText(context.Background(), "hello")
	assert.Error(t, err, "not started")
	_, err = e.Generate(context.Background(), "hello")
	assert.Error(t, err, "no client")
}
