package metrics

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func vec(vals []float64) *mat.VecDense {
	if len(vals) == 0 {
		return nil
	}
	return mat.NewVecDense(len(vals), vals)
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "Perfect accuracy",
			yTrue: []float64{0, 1, 1, 0},
			yPred: []float64{0, 1, 1, 0},
			want:  1.0,
		},
		{
			name:  "75% accuracy",
			yTrue: []float64{0, 1, 1, 0},
			yPred: []float64{0, 1, 0, 0},
			want:  0.75,
		},
		{
			name:  "Zero accuracy",
			yTrue: []float64{0, 0, 0},
			yPred: []float64{1, 1, 1},
			want:  0.0,
		},
		{
			name:    "Empty vectors",
			yTrue:   []float64{},
			yPred:   []float64{},
			wantErr: true,
		},
		{
			name:    "Dimension mismatch",
			yTrue:   []float64{0, 1},
			yPred:   []float64{0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(vec(tt.yTrue), vec(tt.yPred))
			if (err != nil) != tt.wantErr {
				t.Errorf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := vec([]float64{0, 0, 1, 1, 1, 0})
	yPred := vec([]float64{0, 1, 1, 1, 0, 0})

	labels, cm, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("ConfusionMatrix() error = %v", err)
	}
	if len(labels) != 2 || labels[0] != 0 || labels[1] != 1 {
		t.Fatalf("labels = %v, want [0 1]", labels)
	}

	want := [][]int{
		{2, 1}, // true 0: two predicted 0, one predicted 1
		{1, 2}, // true 1: one predicted 0, two predicted 1
	}
	for i := range want {
		for j := range want[i] {
			if cm[i][j] != want[i][j] {
				t.Errorf("cm[%d][%d] = %d, want %d", i, j, cm[i][j], want[i][j])
			}
		}
	}
}

func TestWeightedMetrics(t *testing.T) {
	// 4 samples of class 0, 2 of class 1.
	yTrue := vec([]float64{0, 0, 0, 0, 1, 1})
	yPred := vec([]float64{0, 0, 0, 1, 1, 0})

	// Class 0: tp=3, pred=4, support=4 -> precision 0.75, recall 0.75.
	// Class 1: tp=1, pred=2, support=2 -> precision 0.5, recall 0.5.
	// Weighted precision = (0.75*4 + 0.5*2) / 6.
	wantPrecision := (0.75*4 + 0.5*2) / 6
	wantRecall := wantPrecision // symmetric here
	wantF1 := (0.75*4 + 0.5*2) / 6

	p, err := PrecisionWeighted(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p-wantPrecision) > 1e-9 {
		t.Errorf("PrecisionWeighted() = %v, want %v", p, wantPrecision)
	}

	r, err := RecallWeighted(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(r-wantRecall) > 1e-9 {
		t.Errorf("RecallWeighted() = %v, want %v", r, wantRecall)
	}

	f, err := F1Weighted(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-wantF1) > 1e-9 {
		t.Errorf("F1Weighted() = %v, want %v", f, wantF1)
	}
}

func TestWeightedMetricsZeroDivision(t *testing.T) {
	// Predictor never emits class 1: precision for class 1 is ill-defined and
	// must be treated as 0, not an error.
	yTrue := vec([]float64{0, 0, 1, 1})
	yPred := vec([]float64{0, 0, 0, 0})

	p, err := PrecisionWeighted(yTrue, yPred)
	if err != nil {
		t.Fatalf("PrecisionWeighted() error = %v", err)
	}
	// Class 0: precision 0.5 with support 2; class 1: 0 with support 2.
	want := 0.5 * 2 / 4
	if math.Abs(p-want) > 1e-9 {
		t.Errorf("PrecisionWeighted() = %v, want %v", p, want)
	}

	f, err := F1Weighted(yTrue, yPred)
	if err != nil {
		t.Fatalf("F1Weighted() error = %v", err)
	}
	if f < 0 || f > 1 {
		t.Errorf("F1Weighted() = %v out of range", f)
	}
}

func TestClassificationReport(t *testing.T) {
	yTrue := vec([]float64{0, 0, 1, 1})
	yPred := vec([]float64{0, 1, 1, 1})

	report, err := ClassificationReport(yTrue, yPred)
	if err != nil {
		t.Fatalf("ClassificationReport() error = %v", err)
	}

	for _, want := range []string{"precision", "recall", "f1-score", "support", "accuracy", "macro avg", "weighted avg"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	if !strings.Contains(report, "0.75") { // accuracy 3/4
		t.Errorf("report missing accuracy value:\n%s", report)
	}
}

func TestClassificationReportEmpty(t *testing.T) {
	if _, err := ClassificationReport(nil, nil); err == nil {
		t.Fatal("empty input did not error")
	}
}
