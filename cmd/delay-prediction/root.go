package main

import (
	"github.com/spf13/cobra"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/config"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
)

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "delay-prediction",
		Short:        "Predict late flight arrivals from the NYC 2013 flights data",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default config/delay.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: json or text")

	root.AddCommand(
		newRunCmd(a),
		newPipelinesCmd(a),
		newSplitCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}
