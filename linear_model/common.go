package linear_model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/obesitylab/obego/pkg/errors"
)

// checkXY validates the shapes of a feature matrix and a label column.
func checkXY(op string, X, y mat.Matrix) (nSamples, nFeatures int, err error) {
	nSamples, nFeatures = X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, errors.Wrap(errors.ErrEmptyData, op)
	}
	yRows, yCols := y.Dims()
	if yRows != nSamples {
		return 0, 0, errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	if yCols != 1 {
		return 0, 0, errors.NewValueError(op, "y must be a column vector")
	}
	return nSamples, nFeatures, nil
}

// extractClasses returns the sorted unique integer labels in y.
func extractClasses(y mat.Matrix) []int {
	rows, _ := y.Dims()
	set := make(map[int]bool)
	for i := 0; i < rows; i++ {
		set[int(y.At(i, 0))] = true
	}
	classes := make([]int, 0, len(set))
	for c := range set {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return classes
}

// accuracyOf computes the exact-match fraction of two label columns.
func accuracyOf(pred, y mat.Matrix) float64 {
	n, _ := pred.Dims()
	correct := 0
	for i := 0; i < n; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n)
}

// maxAbs returns the largest absolute value among the gradient components.
func maxAbs(gradW []float64, gradB float64) float64 {
	m := math.Abs(gradB)
	for _, g := range gradW {
		if math.Abs(g) > m {
			m = math.Abs(g)
		}
	}
	return m
}
