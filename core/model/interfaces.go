package model

import "gonum.org/v1/gonum/mat"

// Fitter is a model that can be trained on (X, y).
type Fitter interface {
	// Fit trains the model on the given data.
	Fit(X, y mat.Matrix) error
}

// Predictor is a trained model that maps inputs to predictions.
type Predictor interface {
	// Predict returns predictions for the input data.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator combines training and prediction.
type Estimator interface {
	Fitter
	Predictor
}

// Classifier is a supervised classification model.
type Classifier interface {
	Estimator

	// PredictProba returns per-class probability estimates.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Score returns the mean accuracy on the given data and labels.
	Score(X, y mat.Matrix) float64
}

// ParameterGetter exposes an estimator's hyperparameters.
type ParameterGetter interface {
	// GetParams returns the estimator's hyperparameters.
	GetParams() map[string]interface{}
}

// ParameterSetter allows hyperparameter modification, e.g. by a grid search.
type ParameterSetter interface {
	// SetParams sets the estimator's hyperparameters.
	SetParams(params map[string]interface{}) error
}
