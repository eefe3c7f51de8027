// Command stile stages catalogs for corr2, applies object masks and lists
// the available systematics test adapters.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/config"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool

	cfg *config.Config
	log *stile.Logger
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = slog.LevelDebug.String()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", a.configPath, err)
	}
	a.cfg = cfg
	a.log = cfg.Logger()
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "stile",
		Short: "Stage catalogs for corr2 and run systematics test plumbing",
		Long: `stile prepares source catalogs for the corr2 two-point correlation tool.

Catalogs given as files with a column schema are passed through when their
schemas agree; otherwise the smallest conflicting file is rewritten in a
unified column order. Catalogs loaded by id are written to temp files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "stile.yaml", "configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newStageCmd(a),
		newMaskCmd(a),
		newAdaptersCmd(a),
		newBinsCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
