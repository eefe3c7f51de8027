package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stile/adapter"
)

func newAdaptersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List the registered systematics test adapters",
		Long:  "Lists the adapters of the default registry. Adapters enabled in the configuration are marked with *.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range adapter.Default.Names() {
				mark := " "
				if slices.Contains(a.cfg.Adapters, name) {
					mark = "*"
				}
				if _, err := fmt.Fprintf(out, "%s %s\n", mark, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
