package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stile/codec"
	"github.com/hupe1980/stile/corr2"
	"github.com/hupe1980/stile/handler"
	"github.com/hupe1980/stile/staging"
)

// stageSummary is the JSON form of a staging result.
type stageSummary struct {
	RunID     string         `json:"run_id"`
	Fields    []string       `json:"fields"`
	Args      map[string]any `json:"args"`
	Written   int            `json:"written"`
	Rewritten int            `json:"rewritten"`
	Manifests int            `json:"manifests"`
	Evicted   []string       `json:"evicted,omitempty"`
	TempFiles []string       `json:"temp_files,omitempty"`
}

type roleInput struct {
	files []string
	ids   []string
}

func newStageCmd(a *app) *cobra.Command {
	var (
		inputs [4]roleInput
		params []string
		run    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Stage catalogs as corr2 input files",
		Long: `Stages up to four catalogs (primary, secondary, random, random2).

Files are given as path[:field=pos,...] with 0-based positions; without a
schema the file's header names its columns. Ids are loaded through the
configured store and written to temp files. A role given several times is
passed to corr2 as a file list.

Without --run the staged files are kept and the corr2 arguments printed.`,
		Example: `  stile stage --primary stars.dat:ra=0,dec=1 --secondary gals.dat:ra=0,dec=2,g1=3,g2=4
  stile stage --primary-id visit-1.dat --primary-id visit-2.dat --json
  stile stage --primary cat.dat --run -p nbins=30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dh, err := a.cfg.Handler(ctx)
			if err != nil {
				return err
			}

			var datasets [4]staging.Dataset
			for _, role := range corr2.Roles() {
				d, err := loadDataset(ctx, dh, inputs[role])
				if err != nil {
					return fmt.Errorf("%s: %w", role, err)
				}
				datasets[role] = d
			}

			overrides, err := parseParams(params)
			if err != nil {
				return err
			}
			opts := []staging.Option{
				staging.WithLogger(a.log),
				staging.WithParams(a.cfg.Corr2Params().Merge(overrides)),
			}
			if !run || a.cfg.KeepTempFiles {
				opts = append(opts, staging.WithKeepFiles())
			}

			res, err := staging.New(dh, opts...).Stage(ctx, datasets[0], datasets[1], datasets[2], datasets[3])
			if err != nil {
				return err
			}
			defer res.Close()

			if err := printResult(cmd, res, asJSON); err != nil {
				return err
			}
			if !run {
				return nil
			}
			runner := a.cfg.Runner(a.log)
			runner.Stdout = cmd.OutOrStdout()
			runner.Stderr = cmd.ErrOrStderr()
			return runner.Run(ctx, res.Args())
		},
	}

	f := cmd.Flags()
	for _, role := range corr2.Roles() {
		f.StringArrayVar(&inputs[role].files, role.String(), nil, role.String()+" catalog file, path[:field=pos,...] (repeatable)")
		f.StringArrayVar(&inputs[role].ids, role.String()+"-id", nil, role.String()+" catalog id in the configured store (repeatable)")
	}
	f.StringArrayVarP(&params, "param", "p", nil, "corr2 parameter override key=value (repeatable)")
	f.BoolVar(&run, "run", false, "run corr2 on the staged files")
	f.BoolVar(&asJSON, "json", false, "print a JSON summary")
	return cmd
}

// loadDataset turns one role's flags into a Dataset. Files without a schema
// are read once to take their header.
func loadDataset(ctx context.Context, dh handler.DataHandler, in roleInput) (staging.Dataset, error) {
	var d staging.Dataset
	for _, spec := range in.files {
		path, s, err := parseFileSpec(spec)
		if err != nil {
			return nil, err
		}
		if s == nil {
			n, err := dh.LoadFile(ctx, path, nil)
			if err != nil {
				return nil, err
			}
			s = n.Schema()
		}
		d = append(d, staging.OnDisk{Path: path, Schema: s})
	}

	if len(in.ids) > 0 {
		tables, err := handler.LoadMany(ctx, dh, in.ids, 4)
		if err != nil {
			return nil, err
		}
		d = append(d, staging.Arrays(tables...)...)
	}
	return d, nil
}

func printResult(cmd *cobra.Command, res *staging.Result, asJSON bool) error {
	out := cmd.OutOrStdout()
	if !asJSON {
		for _, arg := range res.Args().Args() {
			fmt.Fprintln(out, arg)
		}
		return nil
	}

	data, err := codec.GoJSON{}.MarshalIndent(stageSummary{
		RunID:     res.RunID,
		Fields:    res.Fields,
		Args:      res.Args(),
		Written:   res.Written,
		Rewritten: res.Rewritten,
		Manifests: res.Manifests,
		Evicted:   res.Evicted,
		TempFiles: res.TempFiles(),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
