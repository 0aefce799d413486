package dataset

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/obesitylab/obego/pkg/errors"
)

// TrainTestSplit shuffles the samples with a deterministic seed and splits
// them into train and test partitions. testFraction is the share of samples
// held out for testing (rounded up, so a non-empty test set is guaranteed for
// any positive fraction).
func TrainTestSplit(X *mat.Dense, y *mat.VecDense, testFraction float64, seed int64) (XTrain, XTest *mat.Dense, yTrain, yTest *mat.VecDense, err error) {
	n, d := X.Dims()
	if n == 0 {
		return nil, nil, nil, nil, errors.Wrap(errors.ErrEmptyData, "TrainTestSplit")
	}
	if y.Len() != n {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", n, y.Len(), 0)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "testFraction must be in (0, 1)")
	}

	nTest := int(math.Ceil(float64(n) * testFraction))
	nTrain := n - nTest
	if nTrain == 0 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "testFraction leaves no training samples")
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	XTrain = mat.NewDense(nTrain, d, nil)
	XTest = mat.NewDense(nTest, d, nil)
	yTrain = mat.NewVecDense(nTrain, nil)
	yTest = mat.NewVecDense(nTest, nil)

	for i, src := range perm {
		if i < nTrain {
			XTrain.SetRow(i, mat.Row(nil, src, X))
			yTrain.SetVec(i, y.AtVec(src))
		} else {
			XTest.SetRow(i-nTrain, mat.Row(nil, src, X))
			yTest.SetVec(i-nTrain, y.AtVec(src))
		}
	}
	return XTrain, XTest, yTrain, yTest, nil
}
