package experiment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/obesitylab/obego/core/model"
	"github.com/obesitylab/obego/dataset"
	"github.com/obesitylab/obego/metrics"
	"github.com/obesitylab/obego/pkg/errors"
	"github.com/obesitylab/obego/pkg/log"
	"github.com/obesitylab/obego/preprocessing"
	"github.com/obesitylab/obego/tracking"
)

// Runner trains every configured model on one shared train/test split and
// records each training as a run in the tracking store.
type Runner struct {
	store        *tracking.Store
	seed         int64
	testFraction float64
	logger       zerolog.Logger
}

// NewRunner creates a Runner writing to the given store.
func NewRunner(store *tracking.Store, seed int64, testFraction float64) *Runner {
	return &Runner{
		store:        store,
		seed:         seed,
		testFraction: testFraction,
		logger:       log.Component("experiment"),
	}
}

// Run executes the full batch over the preprocessed table and returns one
// record per configuration, in configuration order. The first failing run is
// marked FAILED and aborts the batch; there is no partial skip.
func (r *Runner) Run(ctx context.Context, table *dataset.Table) ([]RunRecord, error) {
	X, y, err := table.FeaturesTarget(preprocessing.TargetColumn)
	if err != nil {
		return nil, err
	}

	XTrain, XTest, yTrain, yTest, err := dataset.TrainTestSplit(X, y, r.testFraction, r.seed)
	if err != nil {
		return nil, err
	}

	configs := DefaultConfigs(r.seed)
	records := make([]RunRecord, 0, len(configs))
	for _, cfg := range configs {
		r.logger.Info().Str("model", cfg.Name).Msg("starting experiment")
		rec, err := r.runOne(ctx, cfg, XTrain, XTest, yTrain, yTest)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
		r.logger.Info().
			Str("model", cfg.Name).
			Float64("accuracy", rec.Accuracy).
			Float64("f1_score", rec.F1).
			Msg("completed experiment")
	}
	return records, nil
}

// runOne wraps one training in a tracked run with FAILED/FINISHED status.
func (r *Runner) runOne(ctx context.Context, cfg Config, XTrain, XTest *mat.Dense, yTrain, yTest *mat.VecDense) (*RunRecord, error) {
	runName := fmt.Sprintf("%s_%s", cfg.Name, time.Now().Format("20060102_150405"))
	runID, err := r.store.StartRun(ctx, runName)
	if err != nil {
		return nil, err
	}

	rec, err := r.train(ctx, runID, cfg, XTrain, XTest, yTrain, yTest)
	if err != nil {
		if endErr := r.store.EndRun(ctx, runID, tracking.StatusFailed); endErr != nil {
			r.logger.Error().Err(endErr).Str("run_id", runID).Msg("failed to mark run FAILED")
		}
		return nil, errors.Wrapf(err, "experiment %q", cfg.Name)
	}

	if err := r.store.EndRun(ctx, runID, tracking.StatusFinished); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Runner) train(ctx context.Context, runID string, cfg Config, XTrain, XTest *mat.Dense, yTrain, yTest *mat.VecDense) (*RunRecord, error) {
	if err := cfg.Model.Fit(XTrain, yTrain); err != nil {
		return nil, err
	}
	predicted, err := cfg.Model.Predict(XTest)
	if err != nil {
		return nil, err
	}
	yPred := columnVec(predicted)

	accuracy, err := metrics.Accuracy(yTest, yPred)
	if err != nil {
		return nil, err
	}
	precision, err := metrics.PrecisionWeighted(yTest, yPred)
	if err != nil {
		return nil, err
	}
	recall, err := metrics.RecallWeighted(yTest, yPred)
	if err != nil {
		return nil, err
	}
	f1, err := metrics.F1Weighted(yTest, yPred)
	if err != nil {
		return nil, err
	}

	if err := r.logParams(ctx, runID, cfg); err != nil {
		return nil, err
	}
	for key, value := range map[string]float64{
		"accuracy":  accuracy,
		"precision": precision,
		"recall":    recall,
		"f1_score":  f1,
	} {
		if err := r.store.LogMetric(ctx, runID, key, value); err != nil {
			return nil, err
		}
	}

	slug := Slug(cfg.Name)

	_, cm, err := metrics.ConfusionMatrix(yTest, yPred)
	if err != nil {
		return nil, err
	}
	cmPNG, err := confusionMatrixPNG(cm, cfg.Name)
	if err != nil {
		return nil, err
	}
	cmName := fmt.Sprintf("confusion_matrix_%s.png", slug)
	if _, err := r.store.LogArtifact(ctx, runID, cmName, tracking.KindConfusionMatrix, cmPNG); err != nil {
		return nil, err
	}

	reportText, err := metrics.ClassificationReport(yTest, yPred)
	if err != nil {
		return nil, err
	}
	reportName := fmt.Sprintf("classification_report_%s.txt", slug)
	if _, err := r.store.LogArtifact(ctx, runID, reportName, tracking.KindClassificationReport, []byte(reportText)); err != nil {
		return nil, err
	}

	encoded, err := model.EncodeModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	modelName := fmt.Sprintf("model_%s.gob", slug)
	if _, err := r.store.LogArtifact(ctx, runID, modelName, tracking.KindModel, encoded); err != nil {
		return nil, err
	}

	return &RunRecord{
		RunID:                    runID,
		Model:                    cfg.Name,
		Accuracy:                 accuracy,
		Precision:                precision,
		Recall:                   recall,
		F1:                       f1,
		ConfusionMatrixPath:      cmName,
		ClassificationReportPath: reportName,
	}, nil
}

// logParams records the model name and every hyperparameter, keys sorted for
// a stable log order.
func (r *Runner) logParams(ctx context.Context, runID string, cfg Config) error {
	if err := r.store.LogParam(ctx, runID, "model", cfg.Name); err != nil {
		return err
	}
	params := cfg.Model.GetParams()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := r.store.LogParam(ctx, runID, k, fmt.Sprintf("%v", params[k])); err != nil {
			return err
		}
	}
	return nil
}

// columnVec copies the single column of an n x 1 matrix into a vector.
func columnVec(m mat.Matrix) *mat.VecDense {
	n, _ := m.Dims()
	v := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}
