package model

import "gonum.org/v1/gonum/mat"

// Transformer is an interface for data transformation
type Transformer interface {
	// Fit learns parameters necessary for transformation
	Fit(X mat.Matrix) error

	// Transform transforms data
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform executes Fit and Transform simultaneously
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// InvertibleTransformer can map transformed data back to the original space.
type InvertibleTransformer interface {
	Transformer

	// InverseTransform reverses Transform
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}

// MomentEstimator is a regressor that reports predictive uncertainty.
//
// Fit takes a feature matrix of shape (n_samples, n_features) and a target
// matrix of shape (n_samples, 1). PredictMoments returns the predictive mean
// and the marginal predictive variance for each row of X.
type MomentEstimator interface {
	Fit(X, y mat.Matrix) error
	PredictMoments(X mat.Matrix) (mean, variance *mat.VecDense, err error)
}
