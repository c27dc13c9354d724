package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/featurebus/internal/app"
	"github.com/dshills/featurebus/internal/config"
	"github.com/dshills/featurebus/internal/logger"
)

// globalOptions are the flags shared by every command. Flags that were set
// explicitly override the configuration file and the environment.
type globalOptions struct {
	configPath   string
	logLevel     string
	logFile      string
	settingsPath string
	format       string
	noWatch      bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "featurebus",
		Short: "Event-driven feature toggles and modes",
		Long: `featurebus runs a tick loop over a tree of toggleable features and
mutually exclusive modes, dispatching typed events to the hooks of the
features that are currently running.

Quick start:
  featurebus tree                          # Show the feature tree
  featurebus toggle hud off                # Disable a feature
  featurebus set-mode speed.profile boost  # Switch a mode group
  featurebus run --ticks 100               # Run the tick loop`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (default: "+config.DefaultPath()+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error, off)")
	flags.StringVar(&opts.logFile, "log-file", "", "Also write logs to this file")
	flags.StringVarP(&opts.settingsPath, "settings", "s", "", "Path to the settings document")
	flags.StringVar(&opts.format, "format", "", "Settings format (toml, yaml, json); default from extension")
	flags.BoolVar(&opts.noWatch, "no-watch", false, "Do not reload settings when the file changes")

	cmd.SetVersionTemplate(fmt.Sprintf("featurebus %s (commit: %s)\n", version, commit))

	cmd.AddCommand(
		newRunCmd(opts),
		newTreeCmd(opts),
		newModesCmd(opts),
		newSetModeCmd(opts),
		newToggleCmd(opts),
	)
	return cmd
}

// loadConfig loads the configuration and applies explicitly set flags.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = o.logFile
	}
	if flags.Changed("settings") {
		cfg.Settings.Path = o.settingsPath
	}
	if flags.Changed("format") {
		cfg.Settings.Format = o.format
	}
	if flags.Changed("no-watch") {
		cfg.Settings.Watch = !o.noWatch
	}
	return cfg, cfg.Validate()
}

// newApp builds the application for a one-shot command. Settings are
// loaded but not watched.
func (o *globalOptions) newApp(cmd *cobra.Command) (*app.Application, error) {
	return o.newAppWith(cmd, func(cfg *config.Config) { cfg.Settings.Watch = false })
}

// newAppWith loads the configuration, applies adjust, initializes logging
// and builds the application.
func (o *globalOptions) newAppWith(cmd *cobra.Command, adjust func(*config.Config)) (*app.Application, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(&cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	if err := logger.InitWithFile(cfg.Log.Level, logger.FileConfig{
		Path:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
	}); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("version", version).
		Str("settings", cfg.Settings.Path).
		Dur("tickRate", cfg.Loop.TickRate.Std()).
		Msg("featurebus starting")

	return app.New(cfg)
}

// save persists the settings when a settings file is configured.
func save(cmd *cobra.Command, a *app.Application) error {
	if a.SettingsPath() == "" {
		return nil
	}
	if err := a.SaveSettings(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", a.SettingsPath())
	return nil
}
