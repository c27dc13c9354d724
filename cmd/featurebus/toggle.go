package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newToggleCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <feature> [on|off]",
		Short: "Enable or disable a feature and save the settings",
		Long: `Sets the enabled flag of a toggleable feature and writes the settings
file. Without a state the flag is flipped.

Examples:
  featurebus toggle hud off
  featurebus toggle hud.clock on
  featurebus toggle speed`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := global.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.Features().Toggle(args[0])
			if err != nil {
				return err
			}
			on := !t.Enabled()
			if len(args) == 2 {
				if on, err = parseState(args[1]); err != nil {
					return err
				}
			}

			enabled, err := a.SetEnabled(args[0], on)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], state(enabled))
			return save(cmd, a)
		},
	}
}

func parseState(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	on, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid state %q: want on or off", s)
	}
	return on, nil
}

func state(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
