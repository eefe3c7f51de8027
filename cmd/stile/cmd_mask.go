package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stile/catalog"
	"github.com/hupe1980/stile/handler"
	"github.com/hupe1980/stile/mask"
	"github.com/hupe1980/stile/table"
)

func newMaskCmd(a *app) *cobra.Command {
	var (
		objectType string
		columns    []string
	)

	cmd := &cobra.Command{
		Use:   "mask <catalog>",
		Short: "Select the rows of an object class from an ASCII catalog",
		Long: `Applies one of the object class masks to a catalog whose header names its
columns. Prints the number of selected rows, or with --columns the selected
rows themselves as an ASCII table.

Object classes: ` + strings.Join(typeNames(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := handler.ReadFile(args[0], nil)
			if err != nil {
				return err
			}
			cat := catalog.FromNamed(n)

			m, err := mask.ApplyName(cat, objectType)
			if err != nil {
				return err
			}
			a.log.LogMask(cmd.Context(), objectType, m.Count(), len(m))

			out := cmd.OutOrStdout()
			if len(columns) == 0 {
				_, err := fmt.Fprintf(out, "%s: %d of %d rows\n", objectType, m.Count(), len(m))
				return err
			}
			sel, err := catalog.Select(cat, m.Bitmap(), columns)
			if err != nil {
				return err
			}
			return table.WriteASCII(out, sel)
		},
	}

	cmd.Flags().StringVarP(&objectType, "type", "t", mask.Galaxy.String(), "object class")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "columns to print for the selected rows")
	return cmd
}

func typeNames() []string {
	var names []string
	for _, t := range mask.ObjectTypes() {
		names = append(names, fmt.Sprintf("%q", t.String()))
	}
	return names
}
