package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ezoic/surrogo/config"
	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/objective"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/pkg/log"
	"github.com/ezoic/surrogo/searchspace"
	"github.com/ezoic/surrogo/surrogates"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "surrogo",
		Short:         "Fit and query surrogate models for Bayesian experiment optimization",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log.SetupLoggerWithWriter(cmd.ErrOrStderr(), opts.logLevel)
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "surrogo.yaml", "configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newFitCmd(opts),
		newPredictCmd(opts),
		newScoreCmd(opts),
		newPlotCmd(opts),
		newListCmd(opts),
	)
	return cmd
}

// loadConfig reads the configuration and applies its log level unless the
// flag was set explicitly.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if !cmd.Flags().Changed("log-level") {
		log.SetupLoggerWithWriter(cmd.ErrOrStderr(), cfg.Log.Level)
	}
	return cfg, nil
}

// problem is everything a command needs to fit a surrogate.
type problem struct {
	space     *searchspace.SearchSpace
	objective objective.Objective
	surrogate surrogates.Surrogate
}

func newProblem(cfg config.Config) (*problem, error) {
	space, err := config.NewSearchSpace(cfg.SearchSpace)
	if err != nil {
		return nil, err
	}
	obj, err := config.NewObjective(cfg.Objective)
	if err != nil {
		return nil, err
	}
	s, err := config.NewSurrogate(cfg.Surrogate)
	if err != nil {
		return nil, err
	}
	return &problem{space: space, objective: obj, surrogate: s}, nil
}

// outputColumn is the column an objective produces.
func outputColumn(obj objective.Objective) string {
	if t := obj.Targets(); len(t) == 1 {
		return t[0].Name
	}
	return objective.DesirabilityColumn
}

func readFrame(path string) (*frame.Frame, error) {
	if path == "" {
		return nil, errors.New("a CSV file is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	df, err := frame.ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return df, nil
}
