// Command contacts inspects, cleans and searches contact CSV files and
// computes campaign progress from the command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/outreach/internal/contacts"
	"github.com/JonMunkholm/outreach/internal/core"
	"github.com/JonMunkholm/outreach/internal/logging"
)

type rootOptions struct {
	logLevel  string
	logFormat string
	country   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Clean and inspect campaign contact files",
		Long: `contacts reads contact CSV files the way the outreach service does:
it finds the phone column, normalizes numbers to E.164, drops duplicates,
and reports what it found.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// Logs go to stderr so CSV on stdout stays clean
			logging.Setup(opts.logLevel, opts.logFormat, os.Stderr)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")
	cmd.PersistentFlags().StringVar(&opts.country, "country", contacts.DefaultCountry, "default country for national numbers (ISO code or calling code, see 'contacts countries')")

	cmd.AddCommand(inspectCmd(opts))
	cmd.AddCommand(dedupeCmd(opts))
	cmd.AddCommand(searchCmd(opts))
	cmd.AddCommand(progressCmd())
	cmd.AddCommand(countriesCmd())

	return cmd
}

// newService builds a local service: in-memory previews, no campaign backend.
func (o *rootOptions) newService(backend core.CampaignBackend) *core.Service {
	return core.NewService(core.ServiceConfig{
		DefaultCountry: o.country,
		MaxConcurrent:  1,
	}, nil, backend)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("received interrupt, stopping")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		os.Exit(1)
	}
}
