// Package pipeline chains the workflow stages: preprocess the raw CSV into
// the clean feature table, then train and report on it. Stages run
// sequentially; the first failure is logged with its stage name and aborts
// the pipeline.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/obesitylab/obego/dataset"
	"github.com/obesitylab/obego/experiment"
	"github.com/obesitylab/obego/internal/config"
	"github.com/obesitylab/obego/pkg/errors"
	"github.com/obesitylab/obego/pkg/log"
	"github.com/obesitylab/obego/preprocessing"
	"github.com/obesitylab/obego/report"
	"github.com/obesitylab/obego/tracking"
)

// Pipeline drives the two workflow stages off one configuration.
type Pipeline struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// New creates a Pipeline for the given configuration.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg, logger: log.Component("pipeline")}
}

// Run executes preprocessing then the experiment stage. No retries, no
// recovery: the first stage error is returned after logging.
func (p *Pipeline) Run(ctx context.Context) error {
	stages := []struct {
		name string
		run  func(context.Context) error
	}{
		{"preprocess", p.Preprocess},
		{"experiment", p.Experiment},
	}
	for _, stage := range stages {
		p.logger.Info().Str("stage", stage.name).Msg("starting stage")
		if err := stage.run(ctx); err != nil {
			p.logger.Error().Err(err).Str("stage", stage.name).Msg("stage failed")
			return errors.Wrapf(err, "stage %s", stage.name)
		}
		p.logger.Info().Str("stage", stage.name).Msg("stage finished")
	}
	return nil
}

// Preprocess reads the raw CSV, cleans it, engineers the features and writes
// the clean CSV.
func (p *Pipeline) Preprocess(ctx context.Context) error {
	raw, err := dataset.ReadCSV(p.cfg.RawDataPath)
	if err != nil {
		return err
	}
	p.logger.Info().Int("rows", raw.NRows()).Str("path", p.cfg.RawDataPath).Msg("raw data loaded")

	clean := raw.Clean()
	p.logger.Info().
		Int("rows", clean.NRows()).
		Int("dropped", raw.NRows()-clean.NRows()).
		Msg("data cleaned")

	transformed, err := preprocessing.ObesityTransform(clean)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.cfg.CleanDataPath), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", p.cfg.CleanDataPath)
	}
	if err := transformed.Table.WriteCSV(p.cfg.CleanDataPath); err != nil {
		return err
	}
	p.logger.Info().Str("path", p.cfg.CleanDataPath).Msg("clean data written")
	return nil
}

// Experiment loads the clean CSV, runs the model batch against a fresh
// tracking store session and renders the report.
func (p *Pipeline) Experiment(ctx context.Context) error {
	table, err := dataset.ReadCSV(p.cfg.CleanDataPath)
	if err != nil {
		return err
	}

	store, err := tracking.Open(ctx, p.cfg.TrackingDBPath, p.cfg.OutputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	runner := experiment.NewRunner(store, p.cfg.Seed, p.cfg.TestFraction)
	records, err := runner.Run(ctx, table)
	if err != nil {
		return err
	}

	gen := report.NewGenerator(store, p.cfg.ExperimentName, p.cfg.OutputDir, p.cfg.TemplatePath)
	return gen.Generate(ctx, records)
}

// Train runs the model batch without rendering the report.
func (p *Pipeline) Train(ctx context.Context) error {
	table, err := dataset.ReadCSV(p.cfg.CleanDataPath)
	if err != nil {
		return err
	}

	store, err := tracking.Open(ctx, p.cfg.TrackingDBPath, p.cfg.OutputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = experiment.NewRunner(store, p.cfg.Seed, p.cfg.TestFraction).Run(ctx, table)
	return err
}

// Report rebuilds run records from the tracking store and renders the report.
// Used when training already happened in an earlier invocation.
func (p *Pipeline) Report(ctx context.Context) error {
	store, err := tracking.Open(ctx, p.cfg.TrackingDBPath, p.cfg.OutputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := report.RecordsFromStore(ctx, store)
	if err != nil {
		return err
	}
	gen := report.NewGenerator(store, p.cfg.ExperimentName, p.cfg.OutputDir, p.cfg.TemplatePath)
	return gen.Generate(ctx, records)
}
