// Package experiment runs the fixed model comparison batch: five classifier
// configurations trained on one shared train/test split, each recorded as a
// tracked run with metrics and artifacts.
package experiment

import (
	"strings"

	"github.com/obesitylab/obego/core/model"
	"github.com/obesitylab/obego/linear_model"
	"github.com/obesitylab/obego/tree"
)

// Config is one experiment entry: a display name and the classifier to train.
// Configs are built once and never mutated.
type Config struct {
	Name  string
	Model model.Classifier
}

// RunRecord summarizes one finished run for the report stage. Artifact paths
// are file names relative to the artifact root.
type RunRecord struct {
	RunID                    string
	Model                    string
	Accuracy                 float64
	Precision                float64
	Recall                   float64
	F1                       float64
	ConfusionMatrixPath      string
	ClassificationReportPath string
}

// DefaultConfigs returns the experiment batch in its fixed order. All models
// share the given random seed.
func DefaultConfigs(seed int64) []Config {
	return []Config{
		{
			Name: "Logistic Regression (C=1.0)",
			Model: linear_model.NewLogisticRegression(
				linear_model.WithLRC(1.0),
				linear_model.WithLRMaxIter(1000),
				linear_model.WithLRRandomState(seed),
			),
		},
		{
			Name: "Logistic Regression (C=0.5)",
			Model: linear_model.NewLogisticRegression(
				linear_model.WithLRC(0.5),
				linear_model.WithLRMaxIter(2000),
				linear_model.WithLRRandomState(seed),
			),
		},
		{
			Name: "SVM (Linear Kernel)",
			Model: linear_model.NewLinearSVC(
				linear_model.WithSVCRandomState(seed),
			),
		},
		{
			Name: "Decision Tree (max_depth=10)",
			Model: tree.NewDecisionTreeClassifier(
				tree.WithMaxDepth(10),
			),
		},
		{
			Name: "Decision Tree (max_depth=15)",
			Model: tree.NewDecisionTreeClassifier(
				tree.WithMaxDepth(15),
			),
		},
	}
}

// Slug converts a model display name into an artifact file name fragment.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
