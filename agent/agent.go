package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Asker answers questions within a conversation. Both Expert and Claude
// keep the narrative they generated as the start of the conversation.
type Asker interface {
	AskText(ctx context.Context, question string) (string, error)
}

// Agent is the follow up session after a narrative was generated.
type Agent struct {
	w      io.Writer
	r      *bufio.Reader
	asker  Asker
	Render func(markdown string) string // optional, to format answers
}

// New creates a new Agent that writes to w and reads questions from r.
func New(w io.Writer, r io.Reader, asker Asker) *Agent {
	return &Agent{
		w:     w,
		r:     bufio.NewReader(r),
		asker: asker,
	}
}

const prompt = "ask> "

// Run starts the interactive session. prompts are asked first, as if typed.
func (a *Agent) Run(ctx context.Context, prompts ...string) error {
	fmt.Fprintln(a.w, "Ask anything about this portfolio. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		var input string

		// Flush prompts from the list and then ask for the user.
		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
		}

		if input == "bye" {
			return nil
		}

		answer, err := a.asker.AskText(ctx, input)
		if err != nil {
			return err
		}
		if a.Render != nil {
			answer = a.Render(answer)
		}
		fmt.Fprintln(a.w, answer)
	}
}
