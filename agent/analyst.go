package agent

import (
	"github.com/etnz/dividends"
	"google.golang.org/genai"
)

// DefaultGeminiModel is the model used by the analyst.
const DefaultGeminiModel = "gemini-2.5-pro"

const analystInstruction = `
You are a financial analyst specialized in dividend investing on the Brazilian stock exchange (B3).
You write clear, factual reports for individual investors, in the language of the question.
Base every statement on the figures you are given, and use the tools to get the details of a position or
the dividend cash flow when you need them. Never invent figures: when a value is N/A, say it is not available.
You do not give personalized investment advice.
`

// NewAnalyst returns the expert that writes the narrative of r, and answers
// follow up questions about it.
func NewAnalyst(r *dividends.Report, model string) *Expert {
	if model == "" {
		model = DefaultGeminiModel
	}
	tools := reportTools(r)
	return &Expert{
		Name:        "Analyst",
		Description: "A dividend investing analyst that knows the analyzed portfolio.",
		ModelName:   model,
		Config: &genai.GenerateContentConfig{
			Tools:             []*genai.Tool{{FunctionDeclarations: NewDeclaration(tools)}},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: analystInstruction}}},
		},
		Library: NewLibrary(tools),
	}
}
