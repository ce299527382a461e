package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Expert represent a chat with a Gemini model.
type Expert struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	ModelName   string                       `json:"model_name"`
	Config      *genai.GenerateContentConfig `json:"config"`
	Library     Library
	client      *genai.Client
	chat        *genai.Chat
}

// Start opens the chat. Previous messages are forgotten.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return err
	}
	e.client, e.chat = client, chat
	return nil
}

// Ask is a simple wrapper on top of Chat.Send that resolves function calls
// with the expert's Library until the model answers.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	if e.chat == nil {
		return nil, fmt.Errorf("expert %s is not started", e.Name)
	}
	resp, err := e.chat.Send(ctx, parts...)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from expert %s: %w", e.Name, ErrEmptyResponse)
	}
	part0 := resp.Candidates[0].Content.Parts[0]
	if part0.FunctionCall != nil {
		if e.Library == nil {
			return nil, fmt.Errorf("expert %s doesn't know how to make function calls", e.Name)
		}
		// Ask again with the response the model asked for, until we have a real answer.
		return e.Ask(ctx, &genai.Part{FunctionResponse: e.Library(ctx, part0.FunctionCall)})
	}
	return resp.Candidates[0].Content, nil
}

// AskText sends a question and returns the text of the answer.
func (e *Expert) AskText(ctx context.Context, question string) (string, error) {
	content, err := e.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range content.Parts {
		b.WriteString(p.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("expert %s: %w", e.Name, ErrEmptyResponse)
	}
	return b.String(), nil
}

// Generate implements Generator: the prompt opens a new chat, so that
// follow up questions can be asked with AskText.
func (e *Expert) Generate(ctx context.Context, prompt string) (string, error) {
	if e.client == nil {
		return "", fmt.Errorf("expert %s has no client", e.Name)
	}
	if err := e.Start(ctx, e.client); err != nil {
		return "", err
	}
	return e.AskText(ctx, prompt)
}

// NewGeminiClient returns a client for the Gemini API. An empty apiKey
// lets the SDK read GEMINI_API_KEY or GOOGLE_API_KEY.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
}

// WithClient binds the expert to a client, so that Generate can be used.
func (e *Expert) WithClient(client *genai.Client) *Expert {
	e.client = client
	return e
}
