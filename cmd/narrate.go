package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/dividends/agent"
	"github.com/etnz/dividends/renderer"
	"github.com/google/subcommands"
)

type narrateCmd struct {
	model string
	chat  bool
}

func (*narrateCmd) Name() string     { return "narrate" }
func (*narrateCmd) Synopsis() string { return "write a narrative report of the portfolio with a language model" }
func (*narrateCmd) Usage() string {
	return `divs narrate [-model <model>] [-chat]

  Analyzes the portfolio and asks a language model to write a narrative
  report about it. Gemini models need GEMINI_API_KEY, Claude models need
  ANTHROPIC_API_KEY.

  With -chat, follow up questions can be asked after the report.
`
}

func (c *narrateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.model, "model", "", "Language model, like gemini-2.5-pro or claude-sonnet-4-5. Overrides the configuration.")
	f.BoolVar(&c.chat, "chat", false, "Keep the conversation open for follow up questions.")
}

func (c *narrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := setup()
	if err != nil {
		return fail("%v", err)
	}
	r, err := a.analyze(ctx)
	if err != nil {
		return fail("%v", err)
	}
	narrator, err := a.narrator(ctx, c.model)
	if err != nil {
		return fail("%v", err)
	}
	g := narrator(r)
	text, err := agent.Narrate(ctx, g, r)
	if err != nil {
		return fail("the narrative could not be generated: %v", err)
	}
	printMarkdown(text)

	if !c.chat {
		return subcommands.ExitSuccess
	}
	asker, ok := g.(agent.Asker)
	if !ok {
		return fail("this model cannot answer follow up questions")
	}
	session := agent.New(os.Stdout, a.stdin, asker)
	if *style != "raw" {
		session.Render = func(md string) string {
			out, err := renderer.Terminal(md, *style, 120)
			if err != nil {
				return md
			}
			return out
		}
	}
	if err := session.Run(ctx, f.Args()...); err != nil {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}
