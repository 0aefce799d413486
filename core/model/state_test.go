package model

import (
	"path/filepath"
	"testing"

	"github.com/obesitylab/obego/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()
	if s.IsFitted() {
		t.Error("new StateManager reports fitted")
	}

	if err := s.RequireFitted("TestModel", "Predict"); err == nil {
		t.Error("RequireFitted on unfitted state did not error")
	} else {
		var notFitted *errors.NotFittedError
		if !errors.As(err, &notFitted) {
			t.Errorf("RequireFitted error = %T, want *NotFittedError", err)
		} else if notFitted.ModelName != "TestModel" || notFitted.Method != "Predict" {
			t.Errorf("NotFittedError = %+v, want model TestModel method Predict", notFitted)
		}
	}

	s.SetDimensions(4, 100)
	s.SetFitted()
	if !s.IsFitted() {
		t.Error("SetFitted did not mark the state fitted")
	}
	if err := s.RequireFitted("TestModel", "Predict"); err != nil {
		t.Errorf("RequireFitted after SetFitted: %v", err)
	}
	nFeatures, nSamples := s.Dimensions()
	if nFeatures != 4 || nSamples != 100 {
		t.Errorf("Dimensions() = (%d, %d), want (4, 100)", nFeatures, nSamples)
	}

	s.Reset()
	if s.IsFitted() {
		t.Error("Reset did not clear the fitted flag")
	}
	nFeatures, nSamples = s.Dimensions()
	if nFeatures != 0 || nSamples != 0 {
		t.Errorf("Dimensions() after Reset = (%d, %d), want (0, 0)", nFeatures, nSamples)
	}
}

// stubModel stands in for an estimator with learned parameters.
type stubModel struct {
	Coef      []float64
	Intercept float64
}

func TestModelPersistenceRoundTrip(t *testing.T) {
	original := &stubModel{Coef: []float64{1.5, -2.25, 0.75}, Intercept: 0.125}
	path := filepath.Join(t.TempDir(), "model.gob")

	if err := SaveModel(original, path); err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}

	var restored stubModel
	if err := LoadModel(&restored, path); err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	if restored.Intercept != original.Intercept {
		t.Errorf("Intercept = %v, want %v", restored.Intercept, original.Intercept)
	}
	if len(restored.Coef) != len(original.Coef) {
		t.Fatalf("len(Coef) = %d, want %d", len(restored.Coef), len(original.Coef))
	}
	for i := range original.Coef {
		if restored.Coef[i] != original.Coef[i] {
			t.Errorf("Coef[%d] = %v, want %v", i, restored.Coef[i], original.Coef[i])
		}
	}
}

func TestLoadModelMissingFile(t *testing.T) {
	var m stubModel
	if err := LoadModel(&m, filepath.Join(t.TempDir(), "missing.gob")); err == nil {
		t.Error("LoadModel on missing file did not error")
	}
}
