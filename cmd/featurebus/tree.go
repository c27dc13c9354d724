package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/featurebus/internal/config/loader"
	"github.com/dshills/featurebus/internal/event"
	"github.com/dshills/featurebus/internal/value"
)

func newTreeCmd(global *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the feature tree",
		Long: `Shows every feature, mode group and setting with its current value.
Features that are currently running are marked with '*'.

With --output the tree is written as a settings document instead.

Examples:
  featurebus tree
  featurebus tree --output yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := global.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			root := a.Features().Root
			if output != "" {
				format, err := loader.ParseFormat(output)
				if err != nil {
					return err
				}
				data, err := loader.Marshal(format, value.Export(root).Children)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			printContainer(cmd.OutOrStdout(), root, 0)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the tree as a settings document (toml, yaml, json)")
	return cmd
}

// printContainer writes c and its entries, carried settings first.
func printContainer(w io.Writer, c value.Container, depth int) {
	indent := strings.Repeat("  ", depth)
	mark := " "
	if l, ok := c.(event.Listener); ok && l.Running() {
		mark = "*"
	}
	fmt.Fprintf(w, "%s%s %s [%s]\n", indent, mark, c.Name(), value.RecordType(c))

	g := c.ValueGroup()
	for _, s := range g.Carried() {
		printSetting(w, s, depth+1)
	}
	for _, e := range g.Entries() {
		switch v := e.(type) {
		case value.Setting:
			printSetting(w, v, depth+1)
		case value.Container:
			printContainer(w, v, depth+1)
		}
	}
}

func printSetting(w io.Writer, s value.Setting, depth int) {
	fmt.Fprintf(w, "%s  %s = %s (%s)\n", strings.Repeat("  ", depth), s.Name(), s.Raw(), s.Kind())
}
