package surrogates

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/core/model"
	"github.com/ezoic/surrogo/objective"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/preprocessing"
	"github.com/ezoic/surrogo/searchspace"
)

// PretrainedModel is the exchange format of models trained outside surrogo:
// a linear Gaussian model on the unscaled computational representation.
type PretrainedModel struct {
	InputColumns  []string
	Weights       []float64
	Bias          float64
	NoiseVariance float64
}

// EncodePretrainedModel serializes m into a binary blob for
// PretrainedSurrogate.
func EncodePretrainedModel(m PretrainedModel) ([]byte, error) {
	if len(m.Weights) == 0 {
		return nil, errors.NewValueError("surrogates.EncodePretrainedModel", "model has no weights")
	}
	if len(m.InputColumns) != 0 && len(m.InputColumns) != len(m.Weights) {
		return nil, errors.NewDimensionError("surrogates.EncodePretrainedModel", len(m.Weights), len(m.InputColumns), 0)
	}
	if m.NoiseVariance < 0 {
		return nil, errors.NewValueError("surrogates.EncodePretrainedModel", "noise variance must be non-negative")
	}
	return model.EncodeBlob(m)
}

// PretrainedSurrogate evaluates a model that was trained elsewhere and is
// carried as an opaque binary blob. Inputs and outputs are not scaled and
// Fit only checks that the blob matches the search space.
type PretrainedSurrogate struct {
	Base

	ModelBlob []byte

	model *PretrainedModel
}

// NewPretrainedSurrogate creates a surrogate around blob, typically produced
// by EncodePretrainedModel.
func NewPretrainedSurrogate(blob []byte) *PretrainedSurrogate {
	s := &PretrainedSurrogate{ModelBlob: blob}
	s.Base = newBase(s)
	return s
}

func (s *PretrainedSurrogate) Kind() Kind          { return KindPretrained }
func (s *PretrainedSurrogate) Family() ModelFamily { return FamilyPretrained }

func (s *PretrainedSurrogate) Capabilities() Capabilities {
	return Capabilities{}
}

// ParameterScaler disables input scaling.
func (s *PretrainedSurrogate) ParameterScaler(searchspace.Parameter) preprocessing.ColumnScaler {
	return nil
}

// TargetScaling disables output scaling.
func (s *PretrainedSurrogate) TargetScaling() ScalingMode { return ScalingIdentity }

// ModelContext passes the computational column layout to fitModel so the
// blob can be checked against it.
func (s *PretrainedSurrogate) ModelContext(space *searchspace.SearchSpace, _ objective.Objective) (ModelContext, error) {
	return space.CompRepColumns(), nil
}

func (s *PretrainedSurrogate) fitModel(x, _ *mat.Dense, ctx ModelContext) error {
	var m PretrainedModel
	if err := model.DecodeBlob(s.ModelBlob, &m); err != nil {
		return errors.NewModelError("PretrainedSurrogate.Fit", "invalid model blob", err)
	}
	if _, c := x.Dims(); c != len(m.Weights) {
		return errors.NewDimensionError("PretrainedSurrogate.Fit", len(m.Weights), c, 1)
	}
	if cols, ok := ctx.([]string); ok && len(m.InputColumns) > 0 {
		for i, c := range m.InputColumns {
			if cols[i] != c {
				return errors.NewValueError("PretrainedSurrogate.Fit",
					fmt.Sprintf("model expects column %q at position %d, search space has %q", c, i, cols[i]))
			}
		}
	}
	s.model = &m
	return nil
}

func (s *PretrainedSurrogate) estimateMoments(x *mat.Dense) (*Moments, error) {
	n, _ := x.Dims()
	mean := mat.NewVecDense(n, nil)
	variance := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		mean.SetVec(i, floats.Dot(x.RawRowView(i), s.model.Weights)+s.model.Bias)
		variance.SetVec(i, s.model.NoiseVariance)
	}
	return &Moments{Mean: mean, Variance: variance}, nil
}
