package agent

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultClaudeModel is the Claude model used when none is configured.
const DefaultClaudeModel = "claude-sonnet-4-5"

// Claude is a Generator using the Anthropic Messages API.
type Claude struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	history   []anthropic.MessageParam
}

// NewClaude returns a Claude generator. An empty apiKey lets the SDK read
// ANTHROPIC_API_KEY.
func NewClaude(apiKey, model string, opts ...option.RequestOption) *Claude {
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if model == "" {
		model = DefaultClaudeModel
	}
	return &Claude{client: anthropic.NewClient(opts...), model: model, maxTokens: 4096}
}

// Generate implements Generator. It starts a new conversation, that can be
// followed with AskText.
func (c *Claude) Generate(ctx context.Context, prompt string) (string, error) {
	c.history = nil
	return c.AskText(ctx, prompt)
}

// AskText continues the conversation with a question.
func (c *Claude) AskText(ctx context.Context, question string) (string, error) {
	messages := append(slices.Clone(c.history), anthropic.NewUserMessage(anthropic.NewTextBlock(question)))
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: analystInstruction}},
		Messages:  messages,
	}
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude: %w", err)
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("claude: %w", ErrEmptyResponse)
	}
	c.history = append(messages, resp.ToParam())
	return b.String(), nil
}
