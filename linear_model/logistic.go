// Package linear_model provides the linear classifiers used in the obesity
// experiments: logistic regression and a linear-kernel SVM.
package linear_model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/obesitylab/obego/core/model"
	"github.com/obesitylab/obego/pkg/errors"
)

// LogisticRegression implements binary logistic regression trained with
// gradient descent and L2 regularization. Compatible with scikit-learn's
// LogisticRegression for the binary case.
type LogisticRegression struct {
	state *model.StateManager

	// Hyperparameters
	c           float64 // Inverse regularization strength
	maxIter     int     // Maximum iterations
	tol         float64 // Tolerance for the stopping criterion
	randomState int64   // Random seed, -1 for nondeterministic

	// Fitted parameters, exported for gob encoding
	Coef        []float64 // Feature coefficients
	Intercept   float64   // Intercept term
	ClassLabels []int     // Sorted class labels seen during fitting
	NFeatures   int       // Number of features seen during fitting
	NIter       int       // Iterations actually run

	rand *rand.Rand
}

// LogisticRegressionOption is a functional option for LogisticRegression.
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier.
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:       model.NewStateManager(),
		c:           1.0,
		maxIter:     100,
		tol:         1e-4,
		randomState: -1,
	}
	for _, opt := range opts {
		opt(lr)
	}
	if lr.randomState >= 0 {
		lr.rand = rand.New(rand.NewSource(lr.randomState))
	} else {
		lr.rand = rand.New(rand.NewSource(rand.Int63()))
	}
	return lr
}

// WithLRC sets the inverse regularization strength.
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.c = c
	}
}

// WithLRMaxIter sets the maximum number of iterations.
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for the stopping criterion.
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithLRRandomState sets the random seed.
func WithLRRandomState(seed int64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.randomState = seed
	}
}

// Fit trains the model on X and the binary labels in y.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := checkXY("LogisticRegression.Fit", X, y)
	if err != nil {
		return err
	}

	lr.ClassLabels = extractClasses(y)
	if len(lr.ClassLabels) != 2 {
		return errors.NewValueError("LogisticRegression.Fit",
			"expected exactly 2 classes in y")
	}
	lr.NFeatures = nFeatures

	// y as 0/1 against the sorted class labels.
	yBinary := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		if int(y.At(i, 0)) == lr.ClassLabels[1] {
			yBinary[i] = 1.0
		}
	}

	lr.Coef = make([]float64, nFeatures)
	for j := range lr.Coef {
		lr.Coef[j] = lr.rand.NormFloat64() * 0.01
	}
	lr.Intercept = 0

	baseLearningRate := 1.0
	lambda := 1.0 / lr.c

	for iter := 0; iter < lr.maxIter; iter++ {
		gradW := make([]float64, nFeatures)
		gradB := 0.0

		for i := 0; i < nSamples; i++ {
			z := lr.Intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * lr.Coef[j]
			}
			residual := sigmoid(z) - yBinary[i]
			gradB += residual
			for j := 0; j < nFeatures; j++ {
				gradW[j] += residual * X.At(i, j)
			}
		}

		for j := range gradW {
			gradW[j] = gradW[j]/float64(nSamples) + lambda*lr.Coef[j]
		}
		gradB /= float64(nSamples)

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for j := range lr.Coef {
			lr.Coef[j] -= learningRate * gradW[j]
		}
		lr.Intercept -= learningRate * gradB
		lr.NIter = iter + 1

		if maxAbs(gradW, gradB) < lr.tol {
			break
		}
	}

	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// Predict returns the predicted class label per input row.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "Predict"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.NFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.Predict", lr.NFeatures, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if sigmoid(lr.decision(X, i)) >= 0.5 {
			predictions.Set(i, 0, float64(lr.ClassLabels[1]))
		} else {
			predictions.Set(i, 0, float64(lr.ClassLabels[0]))
		}
	}
	return predictions, nil
}

// PredictProba returns probability estimates, one column per class in label
// order.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "PredictProba"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.NFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", lr.NFeatures, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		p := sigmoid(lr.decision(X, i))
		probas.Set(i, 0, 1.0-p)
		probas.Set(i, 1, p)
	}
	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels.
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return accuracyOf(predictions, y), nil
}

// Classes returns the class labels seen during fitting.
func (lr *LogisticRegression) Classes() []int {
	return append([]int(nil), lr.ClassLabels...)
}

// GetParams returns the model hyperparameters.
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":      "l2",
		"C":            lr.c,
		"max_iter":     lr.maxIter,
		"tol":          lr.tol,
		"random_state": lr.randomState,
	}
}

func (lr *LogisticRegression) decision(X mat.Matrix, row int) float64 {
	z := lr.Intercept
	for j := 0; j < lr.NFeatures; j++ {
		z += X.At(row, j) * lr.Coef[j]
	}
	return z
}

// sigmoid computes the logistic function.
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
