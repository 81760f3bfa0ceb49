package main

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/cobra"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/catalog"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/training"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/core"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/split"
)

func newSplitCmd(a *app) *cobra.Command {
	var (
		keys      []string
		trainPath string
		testPath  string
		seed      int64
		fraction  string
		hash      string
		strict    bool
	)

	cmd := &cobra.Command{
		Use:   "split INPUT",
		Short: "Partition a CSV file into reproducible train and test files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			splitCfg := a.cfg.Split
			if cmd.Flags().Changed("seed") {
				splitCfg.Seed = seed
			}
			if fraction != "" {
				f, err := core.ParseFraction(fraction)
				if err != nil {
					return err
				}
				splitCfg.Fraction = f
			}
			if hash != "" {
				splitCfg.Hash = hash
			}
			if strict {
				splitCfg.StrictKeys = true
			}
			opts, err := splitCfg.Options()
			if err != nil {
				return err
			}

			data, err := catalog.NewCSVDataset(args[0], catalog.CSVLoadArgs{}, catalog.CSVSaveArgs{}).Load()
			if err != nil {
				return err
			}
			df, ok := data.(dataframe.DataFrame)
			if !ok {
				return fmt.Errorf("%s did not load as a table", args[0])
			}

			train, test, err := split.Frame(df, keys, opts)
			if err != nil {
				return err
			}
			if err := catalog.NewCSVDataset(trainPath, catalog.CSVLoadArgs{}, catalog.CSVSaveArgs{}).Save(train); err != nil {
				return err
			}
			if err := catalog.NewCSVDataset(testPath, catalog.CSVLoadArgs{}, catalog.CSVSaveArgs{}).Save(test); err != nil {
				return err
			}

			a.logger.Info("Split table", "input", args[0], "seed", opts.Seed, "fraction", opts.Fraction.String())
			fmt.Fprintf(cmd.OutOrStdout(), "train: %d rows -> %s\ntest: %d rows -> %s\n",
				train.Nrow(), trainPath, test.Nrow(), testPath)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&keys, "keys", training.KeyColumns, "natural key columns")
	cmd.Flags().StringVar(&trainPath, "train", "", "output CSV for the training rows")
	cmd.Flags().StringVar(&testPath, "test", "", "output CSV for the test rows")
	cmd.Flags().Int64Var(&seed, "seed", 0, "partition seed (overrides config)")
	cmd.Flags().StringVar(&fraction, "fraction", "", "training share as n/d (overrides config)")
	cmd.Flags().StringVar(&hash, "hash", "", "hash function: xxhash64 or fnv64a (overrides config)")
	cmd.Flags().BoolVar(&strict, "strict-keys", false, "reject duplicate natural keys")
	cmd.MarkFlagRequired("train")
	cmd.MarkFlagRequired("test")
	return cmd
}
