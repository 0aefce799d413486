package model

import "gonum.org/v1/gonum/mat"

// Fitter is the interface of trainable models.
type Fitter interface {
	// Fit trains the model on X (n_samples x n_features) and y (n_samples x 1).
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface of models that can predict.
type Predictor interface {
	// Predict returns a prediction per input row as an n_samples x 1 matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Transformer is the interface of stateless-API feature transformers such as
// scalers.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// ParameterGetter exposes a model's hyperparameters for logging.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// Classifier combines the interfaces every classifier in the experiment list
// implements.
type Classifier interface {
	Fitter
	Predictor
	ParameterGetter

	// Classes returns the unique class labels seen during fitting.
	Classes() []int
}
