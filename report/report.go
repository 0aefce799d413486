// Package report renders the HTML comparison report from a finished
// experiment batch: metric tables, charts, best-model highlights and
// per-model classification reports.
package report

import (
	"context"
	"html/template"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/obesitylab/obego/experiment"
	"github.com/obesitylab/obego/pkg/errors"
	"github.com/obesitylab/obego/pkg/log"
	"github.com/obesitylab/obego/tracking"
)

const (
	// File names written into the output directory.
	IndexFile           = "index.html"
	ComparisonChartFile = "performance_comparison.png"
	DurationChartFile   = "model_durations.png"
)

// Generator renders the report for one experiment batch.
type Generator struct {
	store          *tracking.Store
	experimentName string
	outputDir      string
	templatePath   string
	logger         zerolog.Logger
}

// NewGenerator creates a Generator reading run details from the given store.
// The classification-report artifacts are expected under outputDir.
func NewGenerator(store *tracking.Store, experimentName, outputDir, templatePath string) *Generator {
	return &Generator{
		store:          store,
		experimentName: experimentName,
		outputDir:      outputDir,
		templatePath:   templatePath,
		logger:         log.Component("report"),
	}
}

// Round4 rounds a metric to four decimals for display.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// BestByAccuracy returns the record with the highest accuracy, first wins on
// ties. It feeds the headline metrics block.
func BestByAccuracy(records []experiment.RunRecord) (experiment.RunRecord, error) {
	if len(records) == 0 {
		return experiment.RunRecord{}, errors.NewValueError("BestByAccuracy", "no run records")
	}
	best := records[0]
	for _, rec := range records[1:] {
		if rec.Accuracy > best.Accuracy {
			best = rec
		}
	}
	return best, nil
}

// BestByF1 returns the record with the highest weighted F1, first wins on
// ties. It feeds the narrative insights. Kept separate from BestByAccuracy:
// the two may disagree and the report shows both.
func BestByF1(records []experiment.RunRecord) (experiment.RunRecord, error) {
	if len(records) == 0 {
		return experiment.RunRecord{}, errors.NewValueError("BestByF1", "no run records")
	}
	best := records[0]
	for _, rec := range records[1:] {
		if rec.F1 > best.F1 {
			best = rec
		}
	}
	return best, nil
}

// RecordsFromStore rebuilds run records from the finished runs in the store,
// in start order. It backs the standalone report command, where the batch ran
// in an earlier process.
func RecordsFromStore(ctx context.Context, store *tracking.Store) ([]experiment.RunRecord, error) {
	infos, err := store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}

	var records []experiment.RunRecord
	for _, info := range infos {
		if info.Status != tracking.StatusFinished {
			continue
		}
		rec := experiment.RunRecord{
			RunID:     info.ID,
			Model:     info.Params["model"],
			Accuracy:  info.Metrics["accuracy"],
			Precision: info.Metrics["precision"],
			Recall:    info.Metrics["recall"],
			F1:        info.Metrics["f1_score"],
		}
		for _, a := range info.Artifacts {
			switch a.Kind {
			case tracking.KindConfusionMatrix:
				rec.ConfusionMatrixPath = a.Name
			case tracking.KindClassificationReport:
				rec.ClassificationReportPath = a.Name
			}
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, errors.NewValueError("RecordsFromStore", "no finished runs in the tracking store")
	}
	return records, nil
}

// modelReport pairs a model name with its classification-report text, kept as
// a slice so the template renders models in batch order.
type modelReport struct {
	Model  string
	Report string
}

// runTiming is one row of the run timing table.
type runTiming struct {
	Model           string
	Start           string
	End             string
	DurationSeconds float64
	Status          string
}

// templateData is the context passed to the HTML template.
type templateData struct {
	ExperimentName string
	ExperimentID   string
	CurrentDate    string
	Runs           []experiment.RunRecord
	BestModel      string
	BestAccuracy   float64
	BestPrecision  float64
	BestRecall     float64
	BestF1         float64
	Insights       []string
	ModelReports   []modelReport
	GraphPath      string
	DurationPlot   string
	Timings        []runTiming
}

// Generate renders every chart and the HTML report into the output directory.
func (g *Generator) Generate(ctx context.Context, records []experiment.RunRecord) error {
	if len(records) == 0 {
		return errors.NewValueError("Generator.Generate", "no run records")
	}
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory %s", g.outputDir)
	}

	rounded := make([]experiment.RunRecord, len(records))
	for i, rec := range records {
		rec.Accuracy = Round4(rec.Accuracy)
		rec.Precision = Round4(rec.Precision)
		rec.Recall = Round4(rec.Recall)
		rec.F1 = Round4(rec.F1)
		rounded[i] = rec
	}

	chart, err := performanceComparisonPNG(rounded)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(g.outputDir, ComparisonChartFile), chart, 0o644); err != nil {
		return errors.Wrap(err, "writing comparison chart")
	}

	reports, err := g.loadModelReports(rounded)
	if err != nil {
		return err
	}
	timings, err := g.loadTimings(ctx, rounded)
	if err != nil {
		return err
	}

	byAccuracy, err := BestByAccuracy(rounded)
	if err != nil {
		return err
	}
	byF1, err := BestByF1(rounded)
	if err != nil {
		return err
	}

	insights := []string{
		"Best model: " + byF1.Model + ", based on the highest weighted F1 score.",
		"Results of the remaining models are analyzed in the tables above.",
		"The logistic regression models also performed well, with some recall weakness on the negative class.",
		"The decision tree models were less effective than the linear models, likely due to overfitting as tree depth grows.",
	}

	now := time.Now()
	data := templateData{
		ExperimentName: g.experimentName,
		ExperimentID:   now.Format("20060102150405"),
		CurrentDate:    now.Format("2006-01-02 15:04:05"),
		Runs:           rounded,
		BestModel:      byAccuracy.Model,
		BestAccuracy:   byAccuracy.Accuracy,
		BestPrecision:  byAccuracy.Precision,
		BestRecall:     byAccuracy.Recall,
		BestF1:         byAccuracy.F1,
		Insights:       insights,
		ModelReports:   reports,
		GraphPath:      ComparisonChartFile,
		DurationPlot:   DurationChartFile,
		Timings:        timings,
	}

	if err := g.render(data); err != nil {
		return err
	}
	g.logger.Info().Str("output", filepath.Join(g.outputDir, IndexFile)).Msg("report generated")
	return nil
}

// loadModelReports reads every run's classification-report artifact. A
// missing file is an error, not a gap in the report.
func (g *Generator) loadModelReports(records []experiment.RunRecord) ([]modelReport, error) {
	out := make([]modelReport, 0, len(records))
	for _, rec := range records {
		path := filepath.Join(g.outputDir, rec.ClassificationReportPath)
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading classification report for %s", rec.Model)
		}
		out = append(out, modelReport{Model: rec.Model, Report: string(text)})
	}
	return out, nil
}

// loadTimings queries the tracking store for per-run timing and renders the
// duration chart.
func (g *Generator) loadTimings(ctx context.Context, records []experiment.RunRecord) ([]runTiming, error) {
	const timeLayout = "2006-01-02 15:04:05"

	timings := make([]runTiming, 0, len(records))
	names := make([]string, 0, len(records))
	seconds := make([]float64, 0, len(records))
	for _, rec := range records {
		info, err := g.store.GetRun(ctx, rec.RunID)
		if err != nil {
			return nil, err
		}
		duration := info.Duration().Seconds()
		timings = append(timings, runTiming{
			Model:           rec.Model,
			Start:           info.StartTime.Format(timeLayout),
			End:             info.EndTime.Format(timeLayout),
			DurationSeconds: duration,
			Status:          info.Status,
		})
		names = append(names, rec.Model)
		seconds = append(seconds, duration)
	}

	chart, err := durationsPNG(names, seconds)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(g.outputDir, DurationChartFile), chart, 0o644); err != nil {
		return nil, errors.Wrap(err, "writing duration chart")
	}
	return timings, nil
}

func (g *Generator) render(data templateData) error {
	tmpl, err := template.ParseFiles(g.templatePath)
	if err != nil {
		return errors.Wrapf(err, "loading report template %s", g.templatePath)
	}

	out, err := os.Create(filepath.Join(g.outputDir, IndexFile))
	if err != nil {
		return errors.Wrap(err, "creating report file")
	}
	defer out.Close()

	if err := tmpl.Execute(out, data); err != nil {
		return errors.Wrap(err, "rendering report")
	}
	return nil
}
