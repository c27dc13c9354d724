package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newModesCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List mode groups and their modes",
		Long: `Lists every mode group by path. The active mode is marked with '*';
aliases follow in parentheses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := global.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			prefix := a.Features().Root.Key() + "."
			for _, g := range a.Features().ModeGroups() {
				fmt.Fprintf(out, "%s\n", strings.TrimPrefix(g.Key(), prefix))
				for _, m := range g.Modes() {
					mark := " "
					if m.IsActive() {
						mark = "*"
					}
					line := fmt.Sprintf("  %s %s", mark, m.Name())
					if aliases := m.Aliases(); len(aliases) > 0 {
						line += fmt.Sprintf(" (%s)", strings.Join(aliases, ", "))
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
}

func newSetModeCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-mode <group> <mode>",
		Short: "Activate a mode and save the settings",
		Long: `Activates a mode of a mode group by name or alias, case-insensitively,
and writes the settings file.

Examples:
  featurebus set-mode speed.profile boost
  featurebus set-mode speed.profile fast`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := global.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.SetMode(args[0], args[1]); err != nil {
				return err
			}
			g, err := a.Features().ModeGroup(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], g.Active().Name())
			return save(cmd, a)
		},
	}
}
