// Package model provides the core abstractions shared by surrogo estimators.
//
// This package defines the building blocks used by the preprocessing
// transformers, the numeric model families and the surrogates:
//
//   - BaseEstimator: embeddable fitted-state tracking for simple estimators
//   - StateManager: composable fitted-state tracking with recorded dimensions
//   - Transformer / MomentEstimator: the contracts estimators implement
//   - Model persistence: binary gob blobs for pretrained model payloads
//
// Example usage:
//
//	type MyScaler struct {
//		model.BaseEstimator
//		// scaler-specific fields
//	}
//
//	func (s *MyScaler) Fit(X mat.Matrix) error {
//		// fitting logic
//		s.SetFitted() // mark as trained
//		return nil
//	}
package model

// EstimatorState represents the learning state of a model
type EstimatorState int

const (
	// NotFitted indicates the model is not yet trained
	NotFitted EstimatorState = iota
	// Fitted indicates the model has been trained
	Fitted
)

// String returns the state name.
func (s EstimatorState) String() string {
	switch s {
	case Fitted:
		return "fitted"
	default:
		return "untrained"
	}
}

// BaseEstimator is the embeddable base for simple estimators such as scalers.
type BaseEstimator struct {
	// State holds the model's learning state. Public for gob encoding.
	State EstimatorState
}

// IsFitted returns whether the estimator has been fitted with training data.
//
// All estimators must be fitted before they can transform or predict.
//
// Example:
//
//	if !scaler.IsFitted() {
//	    if err := scaler.Fit(X); err != nil {
//	        return err
//	    }
//	}
func (e *BaseEstimator) IsFitted() bool {
	return e.State == Fitted
}

// SetFitted marks the estimator as fitted. It is called by implementations at
// the end of a successful Fit, never by end users.
func (e *BaseEstimator) SetFitted() {
	e.State = Fitted
}

// Reset returns the estimator to its untrained state.
func (e *BaseEstimator) Reset() {
	e.State = NotFitted
}
