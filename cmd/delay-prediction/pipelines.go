package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/project"
)

func newPipelinesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pipelines",
		Short: "List registered pipelines and their nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := project.RegisterPipelines(a.logger)
			if err != nil {
				return err
			}
			for _, name := range registry.List() {
				p, err := registry.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, strings.Join(p.Names(), ", "))
			}
			return nil
		},
	}
}
