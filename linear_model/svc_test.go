package linear_model

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestLinearSVCFitPredict(t *testing.T) {
	X, y := separableData()

	svc := NewLinearSVC(
		WithSVCC(1.0),
		WithSVCMaxIter(1000),
		WithSVCRandomState(42),
	)
	if err := svc.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	predictions, err := svc.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := 0; i < 8; i++ {
		if predictions.At(i, 0) != y.At(i, 0) {
			t.Errorf("sample %d: predicted %v, want %v", i, predictions.At(i, 0), y.At(i, 0))
		}
	}
}

func TestLinearSVCDecisionFunction(t *testing.T) {
	X, y := separableData()

	svc := NewLinearSVC(WithSVCMaxIter(1000), WithSVCRandomState(42))
	if err := svc.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	scores, err := svc.DecisionFunction(X)
	if err != nil {
		t.Fatalf("DecisionFunction() error = %v", err)
	}

	// Negative-class samples sit on the negative side and vice versa.
	for i := 0; i < 4; i++ {
		if scores.At(i, 0) >= 0 {
			t.Errorf("class-0 sample %d has non-negative score %v", i, scores.At(i, 0))
		}
	}
	for i := 4; i < 8; i++ {
		if scores.At(i, 0) < 0 {
			t.Errorf("class-1 sample %d has negative score %v", i, scores.At(i, 0))
		}
	}
}

func TestLinearSVCDeterminism(t *testing.T) {
	X, y := separableData()

	a := NewLinearSVC(WithSVCMaxIter(300), WithSVCRandomState(7))
	b := NewLinearSVC(WithSVCMaxIter(300), WithSVCRandomState(7))
	if err := a.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	for j := range a.Coef {
		if a.Coef[j] != b.Coef[j] {
			t.Fatalf("coefficient %d differs across seeded fits", j)
		}
	}
}

func TestLinearSVCGetParams(t *testing.T) {
	svc := NewLinearSVC()
	params := svc.GetParams()
	if params["kernel"] != "linear" {
		t.Errorf("kernel = %v, want linear", params["kernel"])
	}
}

func TestLinearSVCErrors(t *testing.T) {
	svc := NewLinearSVC()
	if _, err := svc.Predict(mat.NewDense(1, 1, []float64{0})); err == nil {
		t.Error("Predict before Fit did not error")
	}

	X := mat.NewDense(2, 1, []float64{1, 2})
	y := mat.NewDense(2, 1, []float64{5, 5})
	if err := svc.Fit(X, y); err == nil {
		t.Error("single-class y accepted")
	}
}
