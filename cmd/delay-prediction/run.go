package main

import (
	"fmt"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/spf13/cobra"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/project"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/core"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		opts        project.RunOptions
		catalogPath string
		seed        int64
		fraction    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a registered pipeline against the data catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if catalogPath != "" {
				a.cfg.Catalog.Path = catalogPath
			}
			if cmd.Flags().Changed("seed") {
				a.cfg.Split.Seed = seed
			}
			if fraction != "" {
				f, err := core.ParseFraction(fraction)
				if err != nil {
					return err
				}
				a.cfg.Split.Fraction = f
			}

			session, err := project.NewSession(a.cfg, a.logger)
			if err != nil {
				return err
			}
			outputs, err := session.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(outputs))
			for name := range outputs {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, describe(outputs[name]))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Pipeline, "pipeline", "p", "", "pipeline to run (default __default__)")
	cmd.Flags().StringSliceVar(&opts.Nodes, "nodes", nil, "run only these nodes")
	cmd.Flags().StringSliceVar(&opts.Tags, "tags", nil, "run only nodes carrying any of these tags")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog file (overrides config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "partition seed (overrides config)")
	cmd.Flags().StringVar(&fraction, "fraction", "", "training share as n/d (overrides config)")
	return cmd
}

func describe(v any) string {
	switch v := v.(type) {
	case dataframe.DataFrame:
		return fmt.Sprintf("DataFrame[%d rows x %d columns]", v.Nrow(), v.Ncol())
	case series.Series:
		return fmt.Sprintf("Series[%s, %d rows]", v.Name, v.Len())
	default:
		return fmt.Sprintf("%T", v)
	}
}
