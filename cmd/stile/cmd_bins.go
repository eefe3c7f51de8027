package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stile/binning"
)

func newBinsCmd(_ *app) *cobra.Command {
	var specs []string

	cmd := &cobra.Command{
		Use:   "bins",
		Short: "Expand binnings into the combinations to step through",
		Long: `Prints one line per combination of bins, the first binning varying
slowest. Binnings are list:field:e0,e1,... with explicit edges,
step:field:low:high:n with n equal bins, or logstep:... with bins equal in
log space.`,
		Example: "  stile bins --bin list:ra:10,10.5,11 --bin logstep:flux.psf:1:1000:3",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bins := make([]binning.Bin, 0, len(specs))
			for _, s := range specs {
				b, err := parseBin(s)
				if err != nil {
					return err
				}
				bins = append(bins, b)
			}

			out := cmd.OutOrStdout()
			for _, combo := range binning.Expand(bins...) {
				names := make([]string, len(combo))
				ranges := make([]string, len(combo))
				for i, b := range combo {
					names[i] = b.Name()
					ranges[i] = b.String()
				}
				if _, err := fmt.Fprintf(out, "%s\t%s\n", strings.Join(names, "-"), strings.Join(ranges, ", ")); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&specs, "bin", nil, "binning (repeatable)")
	return cmd
}
