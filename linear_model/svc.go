package linear_model

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/obesitylab/obego/core/model"
	"github.com/obesitylab/obego/pkg/errors"
)

// LinearSVC implements a linear-kernel support vector classifier trained by
// subgradient descent on the L2-regularized hinge loss.
type LinearSVC struct {
	state *model.StateManager

	// Hyperparameters
	c           float64
	maxIter     int
	tol         float64
	randomState int64

	// Fitted parameters, exported for gob encoding
	Coef        []float64
	Intercept   float64
	ClassLabels []int
	NFeatures   int
	NIter       int

	rand *rand.Rand
}

// LinearSVCOption is a functional option for LinearSVC.
type LinearSVCOption func(*LinearSVC)

// NewLinearSVC creates a new LinearSVC classifier.
func NewLinearSVC(opts ...LinearSVCOption) *LinearSVC {
	svc := &LinearSVC{
		state:       model.NewStateManager(),
		c:           1.0,
		maxIter:     1000,
		tol:         1e-4,
		randomState: -1,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.randomState >= 0 {
		svc.rand = rand.New(rand.NewSource(svc.randomState))
	} else {
		svc.rand = rand.New(rand.NewSource(rand.Int63()))
	}
	return svc
}

// WithSVCC sets the inverse regularization strength.
func WithSVCC(c float64) LinearSVCOption {
	return func(svc *LinearSVC) {
		svc.c = c
	}
}

// WithSVCMaxIter sets the maximum number of iterations.
func WithSVCMaxIter(maxIter int) LinearSVCOption {
	return func(svc *LinearSVC) {
		svc.maxIter = maxIter
	}
}

// WithSVCTol sets the tolerance for the stopping criterion.
func WithSVCTol(tol float64) LinearSVCOption {
	return func(svc *LinearSVC) {
		svc.tol = tol
	}
}

// WithSVCRandomState sets the random seed.
func WithSVCRandomState(seed int64) LinearSVCOption {
	return func(svc *LinearSVC) {
		svc.randomState = seed
	}
}

// Fit trains the classifier on X and the binary labels in y.
func (svc *LinearSVC) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := checkXY("LinearSVC.Fit", X, y)
	if err != nil {
		return err
	}

	svc.ClassLabels = extractClasses(y)
	if len(svc.ClassLabels) != 2 {
		return errors.NewValueError("LinearSVC.Fit", "expected exactly 2 classes in y")
	}
	svc.NFeatures = nFeatures

	// Labels as -1/+1 against the sorted class labels.
	ySigned := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		if int(y.At(i, 0)) == svc.ClassLabels[1] {
			ySigned[i] = 1.0
		} else {
			ySigned[i] = -1.0
		}
	}

	svc.Coef = make([]float64, nFeatures)
	for j := range svc.Coef {
		svc.Coef[j] = svc.rand.NormFloat64() * 0.01
	}
	svc.Intercept = 0

	baseLearningRate := 1.0
	lambda := 1.0 / svc.c

	for iter := 0; iter < svc.maxIter; iter++ {
		gradW := make([]float64, nFeatures)
		gradB := 0.0

		// Hinge-loss subgradient over margin violations.
		for i := 0; i < nSamples; i++ {
			margin := ySigned[i] * svc.decision(X, i)
			if margin < 1 {
				gradB -= ySigned[i]
				for j := 0; j < nFeatures; j++ {
					gradW[j] -= ySigned[i] * X.At(i, j)
				}
			}
		}

		for j := range gradW {
			gradW[j] = gradW[j]/float64(nSamples) + lambda*svc.Coef[j]
		}
		gradB /= float64(nSamples)

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for j := range svc.Coef {
			svc.Coef[j] -= learningRate * gradW[j]
		}
		svc.Intercept -= learningRate * gradB
		svc.NIter = iter + 1

		if maxAbs(gradW, gradB) < svc.tol {
			break
		}
	}

	svc.state.SetDimensions(nFeatures, nSamples)
	svc.state.SetFitted()
	return nil
}

// Predict returns the predicted class label per input row.
func (svc *LinearSVC) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := svc.state.RequireFitted("LinearSVC", "Predict"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != svc.NFeatures {
		return nil, errors.NewDimensionError("LinearSVC.Predict", svc.NFeatures, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if svc.decision(X, i) >= 0 {
			predictions.Set(i, 0, float64(svc.ClassLabels[1]))
		} else {
			predictions.Set(i, 0, float64(svc.ClassLabels[0]))
		}
	}
	return predictions, nil
}

// DecisionFunction returns the signed distance to the separating hyperplane
// per input row.
func (svc *LinearSVC) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	if err := svc.state.RequireFitted("LinearSVC", "DecisionFunction"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != svc.NFeatures {
		return nil, errors.NewDimensionError("LinearSVC.DecisionFunction", svc.NFeatures, nFeatures, 1)
	}

	scores := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		scores.Set(i, 0, svc.decision(X, i))
	}
	return scores, nil
}

// Score returns the mean accuracy on the given test data and labels.
func (svc *LinearSVC) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := svc.Predict(X)
	if err != nil {
		return 0, err
	}
	return accuracyOf(predictions, y), nil
}

// Classes returns the class labels seen during fitting.
func (svc *LinearSVC) Classes() []int {
	return append([]int(nil), svc.ClassLabels...)
}

// GetParams returns the model hyperparameters.
func (svc *LinearSVC) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel":       "linear",
		"C":            svc.c,
		"max_iter":     svc.maxIter,
		"tol":          svc.tol,
		"random_state": svc.randomState,
	}
}

func (svc *LinearSVC) decision(X mat.Matrix, row int) float64 {
	z := svc.Intercept
	for j := 0; j < svc.NFeatures; j++ {
		z += X.At(row, j) * svc.Coef[j]
	}
	return z
}
