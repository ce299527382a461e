package cmd

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/dividends/server"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr  string
	model string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "start the web dashboard" }
func (*serveCmd) Usage() string {
	return `divs serve [-addr :8080] [-model <model>]

  Starts the web dashboard: it shows the analysis of the configured
  portfolio, and lets every user upload their own portfolio file, export
  the results and ask for a narrative report.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", ":8080", "Address to listen to.")
	f.StringVar(&c.model, "model", "", "Language model of the narratives. Overrides the configuration.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := setup()
	if err != nil {
		return fail("%v", err)
	}
	p, err := a.portfolio()
	if err != nil {
		return fail("%v", err)
	}
	opt, err := a.options()
	if err != nil {
		return fail("%v", err)
	}
	fetcher, err := a.file.Fetcher(a.keys, a.log)
	if err != nil {
		return fail("%v", err)
	}
	narrator, err := a.narrator(ctx, c.model)
	if err != nil {
		a.log.Warn().Err(err).Msg("narratives are disabled")
	}

	srv := server.New(server.Config{
		Addr:      c.addr,
		Log:       a.log,
		Fetcher:   fetcher,
		Portfolio: p,
		Options:   opt,
		Narrator:  narrator,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fail("%v", err)
		}
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return fail("%v", err)
		}
	}
	return subcommands.ExitSuccess
}
