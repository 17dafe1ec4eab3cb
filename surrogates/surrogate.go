// Package surrogates provides probabilistic models that approximate the
// relation between experimental parameters and targets.
//
// Every surrogate follows the same lifecycle. It is constructed untrained,
// Fit learns input and output transforms from a search space, an objective
// and a batch of measurements, and Posterior then returns Gaussian predictive
// distributions for candidate parameter settings in original target units.
//
// The available variants form a closed set:
//
//   - GaussianProcessSurrogate: joint posterior, supports transfer learning
//   - BayesianLinearSurrogate: Bayesian ridge regression
//   - RandomForestSurrogate: bootstrap forest, spread across trees as variance
//   - MeanPredictionSurrogate: constant baseline
//   - PretrainedSurrogate: externally trained model shipped as a byte blob
//   - CustomArchitectureSurrogate: user supplied regressor
//
// Example usage:
//
//	s := surrogates.NewGaussianProcessSurrogate()
//	if err := s.Fit(space, obj, measurements); err != nil {
//		log.Fatal(err)
//	}
//	post, err := s.Posterior(candidates)
package surrogates

import (
	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/objective"
	"github.com/ezoic/surrogo/searchspace"
)

// Kind is the serialization discriminant of a surrogate variant.
type Kind string

// Surrogate kinds.
const (
	KindGaussianProcess    Kind = "GaussianProcessSurrogate"
	KindBayesianLinear     Kind = "BayesianLinearSurrogate"
	KindRandomForest       Kind = "RandomForestSurrogate"
	KindMeanPrediction     Kind = "MeanPredictionSurrogate"
	KindPretrained         Kind = "PretrainedSurrogate"
	KindCustomArchitecture Kind = "CustomArchitectureSurrogate"
)

// Kinds lists every surrogate kind.
func Kinds() []Kind {
	return []Kind{
		KindGaussianProcess,
		KindBayesianLinear,
		KindRandomForest,
		KindMeanPrediction,
		KindPretrained,
		KindCustomArchitecture,
	}
}

// ModelFamily groups surrogates by the numerical model behind them.
type ModelFamily string

// Model families.
const (
	FamilyGaussianProcess ModelFamily = "gaussian_process"
	FamilyBayesianLinear  ModelFamily = "bayesian_linear"
	FamilyEnsemble        ModelFamily = "ensemble"
	FamilyConstant        ModelFamily = "constant"
	FamilyPretrained      ModelFamily = "pretrained"
	FamilyCustom          ModelFamily = "custom"
)

// Capabilities describes what a surrogate variant can do.
type Capabilities struct {
	// JointPosterior is set when Posterior returns a full covariance over
	// candidates instead of independent marginal variances.
	JointPosterior bool
	// SupportsTransferLearning is set when the model can share information
	// across the tasks of a task parameter.
	SupportsTransferLearning bool
}

// Surrogate is the contract shared by all surrogate variants.
//
// Fit may be called repeatedly; each successful call replaces the previous
// fitted state. A failed Fit leaves the previous state untouched. Concurrent
// calls to Posterior on a fitted surrogate are safe, concurrent Fit calls are
// not and must be serialized by the caller.
type Surrogate interface {
	Kind() Kind
	Family() ModelFamily
	Capabilities() Capabilities

	Fit(space *searchspace.SearchSpace, obj objective.Objective, measurements *frame.Frame) error
	Posterior(candidates *frame.Frame) (*Posterior, error)

	TransformInputs(df *frame.Frame) (*frame.Frame, error)
	TransformOutputs(df *frame.Frame) (*frame.Frame, error)
	Transforms() (*FittedTransforms, bool)
	IsFitted() bool

	// Adapter exposes the fitted model on computational matrices.
	Adapter() (*Adapter, error)

	base() *Base
}

// ModelContext carries model specific information derived from the search
// space and objective, e.g. the position of the task column. Most variants
// need none.
type ModelContext interface{}
