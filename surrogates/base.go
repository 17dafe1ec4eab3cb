package surrogates

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/objective"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/pkg/log"
	"github.com/ezoic/surrogo/preprocessing"
	"github.com/ezoic/surrogo/searchspace"
)

// primitives is implemented by every variant. fitModel must only replace
// the variant's model after it has been trained successfully.
type primitives interface {
	Kind() Kind
	Family() ModelFamily
	Capabilities() Capabilities

	fitModel(x, y *mat.Dense, ctx ModelContext) error
	estimateMoments(x *mat.Dense) (*Moments, error)
}

// Optional hooks a variant may implement to change the defaults.
type (
	parameterScalerHook interface {
		ParameterScaler(p searchspace.Parameter) preprocessing.ColumnScaler
	}
	targetScalingHook interface {
		TargetScaling() ScalingMode
	}
	modelContextHook interface {
		ModelContext(space *searchspace.SearchSpace, obj objective.Objective) (ModelContext, error)
	}
)

// Base implements the lifecycle shared by all surrogates. Variants embed it
// and provide the model specific primitives.
type Base struct {
	impl       primitives
	transforms *FittedTransforms
	trained    bool

	id     string
	logger log.Logger
}

func newBase(impl primitives) Base {
	id := uuid.NewString()
	return Base{
		impl: impl,
		id:   id,
		logger: log.GetLoggerWithName("surrogates").With(
			log.ModelNameKey, string(impl.Kind()),
			log.EstimatorIDKey, id,
			log.ComponentKey, "surrogates",
		),
	}
}

func (b *Base) base() *Base { return b }

// ID returns the instance identifier used in logs.
func (b *Base) ID() string { return b.id }

// IsFitted reports whether Fit has completed at least once.
func (b *Base) IsFitted() bool { return b.trained }

// Transforms returns the fitted transforms, if any.
func (b *Base) Transforms() (*FittedTransforms, bool) {
	return b.transforms, b.trained
}

func (b *Base) parameterScaler(p searchspace.Parameter) preprocessing.ColumnScaler {
	if h, ok := b.impl.(parameterScalerHook); ok {
		return h.ParameterScaler(p)
	}
	return DefaultParameterScaler(p)
}

func (b *Base) targetScaling() ScalingMode {
	if h, ok := b.impl.(targetScalingHook); ok {
		return h.TargetScaling()
	}
	return ScalingStandardize
}

func (b *Base) modelContext(space *searchspace.SearchSpace, obj objective.Objective) (ModelContext, error) {
	if h, ok := b.impl.(modelContextHook); ok {
		return h.ModelContext(space, obj)
	}
	return nil, nil
}

// checkCompatibility validates the search space against the capabilities of
// the variant.
func (b *Base) checkCompatibility(space *searchspace.SearchSpace) error {
	kind := string(b.impl.Kind())
	if space.NTasks() > 1 && !b.impl.Capabilities().SupportsTransferLearning {
		return errors.NewCapabilityMismatchError(kind, "transfer learning")
	}
	if !space.Continuous().IsEmpty() && b.impl.Family() != FamilyGaussianProcess {
		return errors.NewUnsupportedConfigurationError(kind+".Fit",
			"continuous search spaces are currently only supported by Gaussian process surrogates")
	}
	return nil
}

// Fit trains the surrogate on measurements in experimental representation.
//
// The input scaler is fitted on the search space bounds and the output
// scaler on the objective transformed measurements of this call. The fitted
// state is only replaced when every step succeeds.
//
// Errors:
//   - CapabilityMismatchError: the space has several tasks but the variant
//     does not support transfer learning
//   - UnsupportedConfigurationError: the space has continuous parameters but
//     the variant is not a Gaussian process
//   - ValueError: a search space parameter has no column in measurements
//   - any error of the model's own fitting routine, unchanged
func (b *Base) Fit(space *searchspace.SearchSpace, obj objective.Objective, measurements *frame.Frame) (err error) {
	op := string(b.impl.Kind()) + ".Fit"
	defer errors.Recover(&err, op)
	if space == nil || obj == nil || measurements == nil {
		return errors.NewValueError(op, "search space, objective and measurements are required")
	}
	if err := b.checkCompatibility(space); err != nil {
		return err
	}
	for _, name := range space.ParameterNames() {
		if !measurements.Has(name) {
			return errors.NewValueError(op, fmt.Sprintf("measurements have no column for parameter %q", name))
		}
	}

	start := time.Now()
	b.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, measurements.Len(),
		log.TasksKey, space.NTasks(),
		log.ContinuousKey, !space.Continuous().IsEmpty(),
	)

	ft, err := newFittedTransforms(space, obj, measurements, b.parameterScaler, b.targetScaling())
	if err != nil {
		return err
	}
	x, err := ft.Inputs(measurements)
	if err != nil {
		return err
	}
	y, err := ft.Outputs(measurements)
	if err != nil {
		return err
	}
	tensors, err := frame.ToTensor(x, y)
	if err != nil {
		return err
	}
	ctx, err := b.modelContext(space, obj)
	if err != nil {
		return err
	}
	if err := b.impl.fitModel(tensors[0], tensors[1], ctx); err != nil {
		return err
	}

	b.transforms = ft
	b.trained = true

	_, features := tensors[0].Dims()
	b.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.SamplesKey, measurements.Len(),
		log.FeaturesKey, features,
		log.OutputScalingKey, ft.output.Mode().String(),
	)
	return nil
}

// TransformInputs maps parameter settings to the scaled computational
// representation seen by the model.
func (b *Base) TransformInputs(df *frame.Frame) (*frame.Frame, error) {
	if !b.trained {
		return nil, errors.NewNotFittedError(string(b.impl.Kind()), "TransformInputs")
	}
	return b.transforms.Inputs(df)
}

// TransformOutputs maps measurements to the scaled targets seen by the model.
func (b *Base) TransformOutputs(df *frame.Frame) (*frame.Frame, error) {
	if !b.trained {
		return nil, errors.NewNotFittedError(string(b.impl.Kind()), "TransformOutputs")
	}
	return b.transforms.Outputs(df)
}

// Posterior evaluates the surrogate at candidates given in experimental
// representation. Moments are reported in original target units.
func (b *Base) Posterior(candidates *frame.Frame) (_ *Posterior, err error) {
	defer errors.Recover(&err, string(b.impl.Kind())+".Posterior")
	comp, err := b.TransformInputs(candidates)
	if err != nil {
		return nil, err
	}
	tensors, err := frame.ToTensor(comp)
	if err != nil {
		return nil, err
	}
	return b.posterior(tensors[0])
}

// posterior evaluates the model on scaled computational inputs.
func (b *Base) posterior(x *mat.Dense) (*Posterior, error) {
	if !b.trained {
		return nil, errors.NewNotFittedError(string(b.impl.Kind()), "Posterior")
	}
	caps := b.impl.Capabilities()
	moments, err := b.impl.estimateMoments(x)
	if err != nil {
		return nil, err
	}
	p, err := newGaussianPosterior(moments, caps.JointPosterior)
	if err != nil {
		return nil, err
	}
	p, err = b.transforms.output.descale(p)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("Posterior computed",
		log.OperationKey, log.OperationPosterior,
		log.PhaseKey, log.PhaseInference,
		log.CandidatesKey, p.Len(),
		log.JointPosteriorKey, caps.JointPosterior,
	)
	return p, nil
}

// Adapter returns a view of the fitted surrogate that works on scaled
// computational matrices.
func (b *Base) Adapter() (*Adapter, error) {
	if !b.trained {
		return nil, errors.NewNotFittedError(string(b.impl.Kind()), "Adapter")
	}
	return &Adapter{base: b}, nil
}

func (b *Base) String() string {
	state := "untrained"
	if b.trained {
		state = "fitted, output " + b.transforms.output.String()
	}
	return fmt.Sprintf("%s(%s)", b.impl.Kind(), state)
}
