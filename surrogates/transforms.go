package surrogates

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/objective"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/preprocessing"
	"github.com/ezoic/surrogo/searchspace"
)

// ScalingMode tells whether targets are standardized before fitting.
type ScalingMode int

const (
	// ScalingIdentity leaves targets untouched.
	ScalingIdentity ScalingMode = iota
	// ScalingStandardize centers targets and scales them to unit variance.
	ScalingStandardize
)

func (m ScalingMode) String() string {
	if m == ScalingStandardize {
		return "standardize"
	}
	return "identity"
}

// OutputScaling is the fitted output scaler of a surrogate: either Identity
// or a standardizer fitted on the training targets. The zero value is
// Identity.
type OutputScaling struct {
	mode   ScalingMode
	scaler *preprocessing.StandardScaler
}

// IdentityScaling returns the no-op output scaling.
func IdentityScaling() OutputScaling { return OutputScaling{mode: ScalingIdentity} }

// StandardizeScaling wraps a fitted single-column standardizer.
func StandardizeScaling(s *preprocessing.StandardScaler) (OutputScaling, error) {
	if s == nil || !s.IsFitted() {
		return OutputScaling{}, errors.NewNotFittedError("StandardScaler", "StandardizeScaling")
	}
	if s.NFeatures != 1 {
		return OutputScaling{}, errors.NewDimensionError("surrogates.StandardizeScaling", 1, s.NFeatures, 1)
	}
	return OutputScaling{mode: ScalingStandardize, scaler: s}, nil
}

// Mode returns the scaling mode.
func (o OutputScaling) Mode() ScalingMode { return o.mode }

// IsIdentity reports whether targets are passed through unchanged.
func (o OutputScaling) IsIdentity() bool { return o.mode == ScalingIdentity }

// Scaler returns the fitted standardizer, or nil for Identity.
func (o OutputScaling) Scaler() *preprocessing.StandardScaler { return o.scaler }

// Encode maps targets to scaled space.
func (o OutputScaling) Encode(y mat.Matrix) (mat.Matrix, error) {
	if o.IsIdentity() {
		return y, nil
	}
	return o.scaler.Transform(y)
}

// Decode maps scaled targets back to original units.
func (o OutputScaling) Decode(y mat.Matrix) (mat.Matrix, error) {
	if o.IsIdentity() {
		return y, nil
	}
	return o.scaler.InverseTransform(y)
}

// descale maps a posterior from scaled space to original target units.
func (o OutputScaling) descale(p *Posterior) (*Posterior, error) {
	if o.IsIdentity() {
		return p, nil
	}
	mean, cov, err := o.scaler.UntransformGaussian(p.Mean, p.Covariance)
	if err != nil {
		return nil, err
	}
	return &Posterior{Mean: mean, Covariance: cov}, nil
}

func (o OutputScaling) String() string {
	if o.IsIdentity() {
		return "Identity"
	}
	return fmt.Sprintf("Standardize(mean=%.4g, scale=%.4g)", o.scaler.Mean[0], o.scaler.Scale[0])
}

// DefaultParameterScaler is the scaler used for a parameter unless a variant
// chooses otherwise: min-max to [0, 1], fitted on the search space bounds.
func DefaultParameterScaler(searchspace.Parameter) preprocessing.ColumnScaler {
	return preprocessing.NewMinMaxScalerDefault()
}

// FittedTransforms holds everything a fitted surrogate needs to move data
// between experimental and scaled computational representation. It is
// immutable once built.
type FittedTransforms struct {
	space       *searchspace.SearchSpace
	objective   objective.Objective
	inputScaler *preprocessing.ColumnTransformer
	output      OutputScaling
}

// newFittedTransforms builds the input scaler from the search space bounds
// and the output scaling from the objective transformed measurements.
func newFittedTransforms(
	space *searchspace.SearchSpace,
	obj objective.Objective,
	measurements *frame.Frame,
	parameterScaler func(searchspace.Parameter) preprocessing.ColumnScaler,
	targetScaling ScalingMode,
) (*FittedTransforms, error) {
	inputScaler, err := makeInputScaler(space, parameterScaler)
	if err != nil {
		return nil, err
	}
	output, err := makeOutputScaling(obj, measurements, targetScaling)
	if err != nil {
		return nil, err
	}
	return &FittedTransforms{
		space:       space,
		objective:   obj,
		inputScaler: inputScaler,
		output:      output,
	}, nil
}

func makeInputScaler(
	space *searchspace.SearchSpace,
	parameterScaler func(searchspace.Parameter) preprocessing.ColumnScaler,
) (*preprocessing.ColumnTransformer, error) {
	known := make(map[string]bool)
	for _, c := range space.CompRepColumns() {
		known[c] = true
	}

	groups := make([]preprocessing.ColumnGroup, 0, len(space.Parameters()))
	for _, p := range space.Parameters() {
		var cols []string
		for _, c := range p.CompRepColumns() {
			if known[c] {
				cols = append(cols, c)
			}
		}
		groups = append(groups, preprocessing.ColumnGroup{
			Name:    p.Name(),
			Columns: cols,
			Scaler:  parameterScaler(p),
		})
	}

	bounds, err := space.CompRepBounds()
	if err != nil {
		return nil, err
	}
	ct := preprocessing.NewColumnTransformer(groups...)
	if err := ct.Fit(bounds); err != nil {
		return nil, err
	}
	return ct, nil
}

func makeOutputScaling(obj objective.Objective, measurements *frame.Frame, mode ScalingMode) (OutputScaling, error) {
	if mode == ScalingIdentity {
		return IdentityScaling(), nil
	}
	targets, err := obj.Transform(measurements)
	if err != nil {
		return OutputScaling{}, err
	}
	y, err := targets.Matrix()
	if err != nil {
		return OutputScaling{}, err
	}
	scaler := preprocessing.NewTargetStandardizer()
	if err := scaler.Fit(y); err != nil {
		return OutputScaling{}, err
	}
	return StandardizeScaling(scaler)
}

// SearchSpace returns the search space the transforms were built for.
func (ft *FittedTransforms) SearchSpace() *searchspace.SearchSpace { return ft.space }

// Objective returns the objective used for the output transform.
func (ft *FittedTransforms) Objective() objective.Objective { return ft.objective }

// InputScaler returns the fitted column transformer.
func (ft *FittedTransforms) InputScaler() *preprocessing.ColumnTransformer { return ft.inputScaler }

// Output returns the fitted output scaling.
func (ft *FittedTransforms) Output() OutputScaling { return ft.output }

// Inputs maps parameter settings in experimental representation to scaled
// computational representation.
//
// df may contain only a subset of the parameters, e.g. the discrete part of
// a hybrid space. Absent parameters are filled with missing values for the
// transformation and dropped again afterwards, so the result holds exactly
// the computational columns of the parameters present in df, in the order of
// the input scaler output. Columns of df that are not parameters are ignored.
// A df without any parameter column is an error.
func (ft *FittedTransforms) Inputs(df *frame.Frame) (_ *frame.Frame, err error) {
	defer errors.Recover(&err, "FittedTransforms.Inputs")

	present := make(map[string]bool)
	var presentParams []string
	for _, c := range df.Columns() {
		p, ok := ft.space.Parameter(c)
		if !ok {
			continue
		}
		presentParams = append(presentParams, c)
		for _, cc := range p.CompRepColumns() {
			present[cc] = true
		}
	}
	if len(presentParams) == 0 {
		return nil, errors.NewValueError("FittedTransforms.Inputs",
			fmt.Sprintf("none of the columns [%s] is a parameter of the search space", strings.Join(df.Columns(), ", ")))
	}

	augmented := df.Reindex(ft.space.ParameterNames())
	comp, err := ft.space.Transform(augmented, true)
	if err != nil {
		return nil, err
	}
	scaled, err := ft.inputScaler.TransformFrame(comp)
	if err != nil {
		return nil, err
	}

	var keep []string
	for _, c := range scaled.Columns() {
		if present[c] {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		return nil, errors.NewValueError("FittedTransforms.Inputs",
			fmt.Sprintf("parameters [%s] produce no computational columns", strings.Join(presentParams, ", ")))
	}
	return scaled.Select(keep)
}

// Outputs maps measurements to scaled computational targets: the objective
// transform followed by the output scaling. Column labels and the row index
// of the objective output are kept.
func (ft *FittedTransforms) Outputs(df *frame.Frame) (_ *frame.Frame, err error) {
	defer errors.Recover(&err, "FittedTransforms.Outputs")
	targets, err := ft.objective.Transform(df)
	if err != nil {
		return nil, err
	}
	if ft.output.IsIdentity() {
		return targets, nil
	}
	y, err := targets.Matrix()
	if err != nil {
		return nil, err
	}
	scaled, err := ft.output.Encode(y)
	if err != nil {
		return nil, err
	}
	return frame.FromMatrix(scaled, targets.Columns(), df.Index())
}
