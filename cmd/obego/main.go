// Command obego runs the obesity classification experiment workflow:
// preprocess the raw dataset, train the model batch, render the comparison
// report, or all three in sequence.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/obesitylab/obego/internal/config"
	"github.com/obesitylab/obego/pkg/log"
	"github.com/obesitylab/obego/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg *config.Config

	// Flag values; applied over the loaded config when set.
	rawData        string
	cleanData      string
	trackingDB     string
	outputDir      string
	templatePath   string
	experimentName string
	seed           int64
	testFraction   float64
	logLevel       string
	jsonLogs       bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "obego",
		Short:         "Obesity classification experiment workflow",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.rawData, "raw-data", "", "path to the raw dataset CSV")
	pf.StringVar(&a.cleanData, "clean-data", "", "path to the preprocessed CSV")
	pf.StringVar(&a.trackingDB, "tracking-db", "", "path to the tracking SQLite database")
	pf.StringVar(&a.outputDir, "output-dir", "", "directory for artifacts and the report")
	pf.StringVar(&a.templatePath, "template", "", "path to the HTML report template")
	pf.StringVar(&a.experimentName, "experiment-name", "", "experiment name shown in the report")
	pf.Int64Var(&a.seed, "seed", 0, "random seed for the train/test split and models")
	pf.Float64Var(&a.testFraction, "test-fraction", 0, "fraction of samples held out for testing")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.BoolVar(&a.jsonLogs, "json-logs", false, "emit logs as JSON instead of console format")

	root.AddCommand(
		newStageCmd(a, "preprocess", "Clean the raw dataset and engineer features",
			func(p *pipeline.Pipeline, ctx context.Context) error { return p.Preprocess(ctx) }),
		newStageCmd(a, "train", "Train the model batch and record runs",
			func(p *pipeline.Pipeline, ctx context.Context) error { return p.Train(ctx) }),
		newStageCmd(a, "report", "Render the HTML report from recorded runs",
			func(p *pipeline.Pipeline, ctx context.Context) error { return p.Report(ctx) }),
		newStageCmd(a, "run", "Run the full pipeline: preprocess, train, report",
			func(p *pipeline.Pipeline, ctx context.Context) error { return p.Run(ctx) }),
	)
	return root
}

func newStageCmd(a *app, use, short string, run func(*pipeline.Pipeline, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(pipeline.New(a.cfg), cmd.Context())
			if err != nil {
				logger := log.Component("cli")
				logger.Error().Err(err).Str("command", use).Msg("command failed")
			}
			return err
		},
	}
}

// setup loads the configuration and lays explicitly set flags over it.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("raw-data") {
		cfg.RawDataPath = a.rawData
	}
	if flags.Changed("clean-data") {
		cfg.CleanDataPath = a.cleanData
	}
	if flags.Changed("tracking-db") {
		cfg.TrackingDBPath = a.trackingDB
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = a.outputDir
	}
	if flags.Changed("template") {
		cfg.TemplatePath = a.templatePath
	}
	if flags.Changed("experiment-name") {
		cfg.ExperimentName = a.experimentName
	}
	if flags.Changed("seed") {
		cfg.Seed = a.seed
	}
	if flags.Changed("test-fraction") {
		cfg.TestFraction = a.testFraction
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}

	log.Setup(cfg.LogLevel, a.jsonLogs)
	a.cfg = cfg
	return nil
}
