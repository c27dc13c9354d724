package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/featurebus/internal/config"
)

type runOptions struct {
	ticks    uint64
	tickRate time.Duration
	world    string
	save     bool
}

func newRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the tick loop",
		Long: `Runs the tick loop until interrupted or until --ticks ticks were
dispatched. While running, edits to the settings file are applied live.

Examples:
  featurebus run                      # Run until Ctrl-C
  featurebus run --ticks 200          # Stop after 200 ticks
  featurebus run --world overworld    # Start inside a world`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(cmd, global, opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.ticks, "ticks", 0, "Stop after this many ticks (0 runs until interrupted)")
	cmd.Flags().DurationVar(&opts.tickRate, "tick-rate", 0, "Interval between ticks")
	cmd.Flags().StringVar(&opts.world, "world", "", "Join this world before the first tick")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save settings when the loop stops")
	return cmd
}

func runLoop(cmd *cobra.Command, global *globalOptions, opts *runOptions) error {
	a, err := global.newAppWith(cmd, func(cfg *config.Config) {
		if cmd.Flags().Changed("ticks") {
			cfg.Loop.Ticks = opts.ticks
		}
		if cmd.Flags().Changed("tick-rate") {
			cfg.Loop.TickRate = config.Duration(opts.tickRate)
		}
	})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.world != "" {
		a.JoinWorld(opts.world)
	}

	if err := a.Run(ctx); err != nil {
		return err
	}

	snap := a.Metrics().Snapshot()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ticks: %d (overruns %d, avg %s)\n", snap.TickCount, snap.OverrunTicks, time.Duration(snap.AvgTickNs))
	fmt.Fprintf(out, "reloads: %d (errors %d)\n", snap.ReloadCount, snap.ReloadErrors)
	fmt.Fprintf(out, "faults: %d\n", a.Faults())
	if line := a.Features().HUDLine(); line != "" {
		fmt.Fprintf(out, "hud: %s\n", line)
	}

	if opts.save {
		return save(cmd, a)
	}
	return nil
}
