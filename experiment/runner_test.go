package experiment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/obesitylab/obego/dataset"
	"github.com/obesitylab/obego/preprocessing"
	"github.com/obesitylab/obego/tracking"
)

// syntheticTable builds a balanced, well-separated binary problem: 10 samples
// per class over two standardized features.
func syntheticTable(t *testing.T) *dataset.Table {
	t.Helper()
	table := dataset.New([]string{"Age", "Weight", preprocessing.TargetColumn})
	for i := 0; i < 10; i++ {
		jitter := float64(i) * 0.05
		row0 := []string{dataset.FormatFloat(-1 - jitter), dataset.FormatFloat(-1 + jitter), "0"}
		row1 := []string{dataset.FormatFloat(1 + jitter), dataset.FormatFloat(1 - jitter), "1"}
		if err := table.AppendRow(row0); err != nil {
			t.Fatal(err)
		}
		if err := table.AppendRow(row1); err != nil {
			t.Fatal(err)
		}
	}
	return table
}

func openStore(t *testing.T) *tracking.Store {
	t.Helper()
	dir := t.TempDir()
	store, err := tracking.Open(context.Background(), filepath.Join(dir, "runs.db"), filepath.Join(dir, "artifacts"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunnerRunBatch(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	table := syntheticTable(t)

	runner := NewRunner(store, 42, 0.3)
	records, err := runner.Run(ctx, table)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("len(records) = %d, want 5", len(records))
	}

	wantOrder := []string{
		"Logistic Regression (C=1.0)",
		"Logistic Regression (C=0.5)",
		"SVM (Linear Kernel)",
		"Decision Tree (max_depth=10)",
		"Decision Tree (max_depth=15)",
	}
	for i, rec := range records {
		if rec.Model != wantOrder[i] {
			t.Errorf("record %d model = %q, want %q", i, rec.Model, wantOrder[i])
		}
		if rec.RunID == "" {
			t.Errorf("record %d has empty run id", i)
		}
		for name, v := range map[string]float64{
			"accuracy":  rec.Accuracy,
			"precision": rec.Precision,
			"recall":    rec.Recall,
			"f1_score":  rec.F1,
		} {
			if v < 0 || v > 1 {
				t.Errorf("record %d %s = %v, want in [0, 1]", i, name, v)
			}
		}

		// Artifacts are written under the store's artifact root.
		for _, file := range []string{rec.ConfusionMatrixPath, rec.ClassificationReportPath} {
			if _, err := os.Stat(filepath.Join(store.ArtifactRoot(), file)); err != nil {
				t.Errorf("record %d artifact %s missing: %v", i, file, err)
			}
		}

		info, err := store.GetRun(ctx, rec.RunID)
		if err != nil {
			t.Fatalf("GetRun(%s) error = %v", rec.RunID, err)
		}
		if info.Status != tracking.StatusFinished {
			t.Errorf("run %s status = %q, want FINISHED", rec.RunID, info.Status)
		}
		if info.Metrics["accuracy"] != rec.Accuracy {
			t.Errorf("run %s stored accuracy %v, record has %v", rec.RunID, info.Metrics["accuracy"], rec.Accuracy)
		}
		if info.Params["model"] != rec.Model {
			t.Errorf("run %s param model = %q, want %q", rec.RunID, info.Params["model"], rec.Model)
		}
		if len(info.Artifacts) != 3 {
			t.Errorf("run %s has %d artifacts, want 3", rec.RunID, len(info.Artifacts))
		}
	}
}

func TestRunnerDeterminism(t *testing.T) {
	ctx := context.Background()
	table := syntheticTable(t)

	a, err := NewRunner(openStore(t), 42, 0.3).Run(ctx, table)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRunner(openStore(t), 42, 0.3).Run(ctx, table)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a {
		if a[i].Accuracy != b[i].Accuracy || a[i].Precision != b[i].Precision ||
			a[i].Recall != b[i].Recall || a[i].F1 != b[i].F1 {
			t.Errorf("model %s: metrics differ across identically seeded batches", a[i].Model)
		}
	}
}

func TestRunnerFailureMarksRunFailed(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	// Single-class target: every classifier rejects it at Fit time.
	table := dataset.New([]string{"Age", preprocessing.TargetColumn})
	for i := 0; i < 10; i++ {
		if err := table.AppendRow([]string{dataset.FormatFloat(float64(i)), "1"}); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := NewRunner(store, 42, 0.3).Run(ctx, table); err == nil {
		t.Fatal("Run() on single-class data did not error")
	}

	infos, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 {
		t.Fatalf("len(runs) = %d, want 1 (batch aborts on first failure)", len(infos))
	}
	if infos[0].Status != tracking.StatusFailed {
		t.Errorf("run status = %q, want FAILED", infos[0].Status)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Logistic Regression (C=1.0)", "logistic_regression_(c=1.0)"},
		{"SVM (Linear Kernel)", "svm_(linear_kernel)"},
		{"Decision Tree (max_depth=10)", "decision_tree_(max_depth=10)"},
	}
	for _, tt := range tests {
		if got := Slug(tt.name); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
