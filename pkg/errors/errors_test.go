package errors

import (
	"strings"
	"testing"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("StandardScaler", "Transform")
	if err == nil {
		t.Fatal("NewNotFittedError() returned nil")
	}

	var nfe *NotFittedError
	if !As(err, &nfe) {
		t.Fatalf("error %v is not a *NotFittedError", err)
	}
	if nfe.ModelName != "StandardScaler" || nfe.Method != "Transform" {
		t.Errorf("unexpected fields: %+v", nfe)
	}
	if !strings.Contains(err.Error(), "not fitted") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestDimensionError(t *testing.T) {
	tests := []struct {
		name     string
		axis     int
		wantWord string
	}{
		{name: "feature axis", axis: 1, wantWord: "features"},
		{name: "row axis", axis: 0, wantWord: "rows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDimensionError("Accuracy", 10, 7, tt.axis)
			if !strings.Contains(err.Error(), tt.wantWord) {
				t.Errorf("message %q does not mention %q", err.Error(), tt.wantWord)
			}

			var de *DimensionError
			if !As(err, &de) {
				t.Fatalf("error %v is not a *DimensionError", err)
			}
			if de.Expected != 10 || de.Got != 7 {
				t.Errorf("unexpected fields: %+v", de)
			}
		})
	}
}

func TestMissingColumnError(t *testing.T) {
	err := NewMissingColumnError("ObesityTransform", "NObeyesdad")

	var mce *MissingColumnError
	if !As(err, &mce) {
		t.Fatalf("error %v is not a *MissingColumnError", err)
	}
	if mce.Column != "NObeyesdad" {
		t.Errorf("Column = %q, want NObeyesdad", mce.Column)
	}
}

func TestWrapPreservesType(t *testing.T) {
	base := NewValueError("Clean", "no rows left")
	wrapped := Wrap(base, "preprocess stage failed")

	var ve *ValueError
	if !As(wrapped, &ve) {
		t.Fatalf("wrapped error lost its *ValueError: %v", wrapped)
	}
	if !strings.Contains(wrapped.Error(), "preprocess stage failed") {
		t.Errorf("wrap message missing: %v", wrapped)
	}
}

func TestWarnHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) { captured = w })
	defer SetWarningHandler(nil)

	w := NewUndefinedMetricWarning("precision", "no predicted samples", 0)
	Warn(w)

	if captured == nil {
		t.Fatal("warning handler was not invoked")
	}
	if !strings.Contains(captured.Error(), "ill-defined") {
		t.Errorf("unexpected warning message: %v", captured)
	}
}
