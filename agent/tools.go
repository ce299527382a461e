package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/dividends"
	"github.com/etnz/dividends/renderer"
	"google.golang.org/genai"
)

// Library resolves the function calls of a model.
type Library func(context.Context, *genai.FunctionCall) *genai.FunctionResponse

// Function is a tool offered to a model.
type Function interface {
	// Declare this function
	Declaration() *genai.FunctionDeclaration
	// Call this function
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// NewLibrary dispatches calls to functions by name.
func NewLibrary[T Function](functions []T) Library {
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		for _, f := range functions {
			if f.Declaration().Name == call.Name {
				return f.Call(ctx, call.ID, call.Args)
			}
		}
		return errorResponse(call.ID, call.Name, fmt.Errorf("unknown function %s", call.Name))
	}
}

// NewDeclaration returns the declarations of functions.
func NewDeclaration[T Function](functions []T) []*genai.FunctionDeclaration {
	result := make([]*genai.FunctionDeclaration, 0, len(functions))
	for _, f := range functions {
		result = append(result, f.Declaration())
	}
	return result
}

// Func implements a simple Function
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func errorResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"error": err.Error()}}
}

// reportTools returns the functions giving access to the details of r.
func reportTools(r *dividends.Report) []*Func {
	position := &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "position",
			Description: "Details of a position of the portfolio: price, ratios, yield, dividend growth and the last dividends paid.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"ticker": {Type: genai.TypeString, Description: "The ticker of the position, like BBAS3.SA."},
				},
				Required: []string{"ticker"},
			},
			Response: &genai.Schema{Type: genai.TypeString, Description: "A markdown description of the position."},
		},
	}
	position.Func = func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
		ticker, ok := args["ticker"].(string)
		if !ok {
			return errorResponse(id, "position", fmt.Errorf("argument 'ticker' is not a string as expected but %T", args["ticker"]))
		}
		ticker = dividends.NormalizeTicker(ticker)
		for _, row := range r.Rows {
			if row.Position.Ticker == ticker {
				return &genai.FunctionResponse{ID: id, Name: "position", Response: map[string]any{"output": renderer.PositionMarkdown(row)}}
			}
		}
		return errorResponse(id, "position", fmt.Errorf("no position %q, known tickers are %s", ticker, strings.Join(tickers(r), ", ")))
	}

	cashflow := &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "cash_flow",
			Description: "The dividends received by the portfolio per unit invested, most recent first.",
			Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown table of dates and amounts."},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return &genai.FunctionResponse{ID: id, Name: "cash_flow", Response: map[string]any{"output": renderer.CashFlowMarkdown(r)}}
		},
	}
	return []*Func{position, cashflow}
}

func tickers(r *dividends.Report) []string {
	res := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		res = append(res, row.Position.Ticker)
	}
	return res
}
