package surrogates

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/core/model"
	"github.com/ezoic/surrogo/pkg/errors"
)

// CustomArchitectureSurrogate wraps a user supplied regressor. The wrapped
// model is arbitrary code, so this variant cannot be serialized.
type CustomArchitectureSurrogate struct {
	Base

	Model model.MomentEstimator
}

// NewCustomArchitectureSurrogate wraps m.
func NewCustomArchitectureSurrogate(m model.MomentEstimator) *CustomArchitectureSurrogate {
	s := &CustomArchitectureSurrogate{Model: m}
	s.Base = newBase(s)
	return s
}

func (s *CustomArchitectureSurrogate) Kind() Kind          { return KindCustomArchitecture }
func (s *CustomArchitectureSurrogate) Family() ModelFamily { return FamilyCustom }

func (s *CustomArchitectureSurrogate) Capabilities() Capabilities {
	return Capabilities{}
}

func (s *CustomArchitectureSurrogate) fitModel(x, y *mat.Dense, _ ModelContext) error {
	if s.Model == nil {
		return errors.NewValueError("CustomArchitectureSurrogate.Fit", "no model configured")
	}
	return s.Model.Fit(x, y)
}

func (s *CustomArchitectureSurrogate) estimateMoments(x *mat.Dense) (*Moments, error) {
	mean, variance, err := s.Model.PredictMoments(x)
	if err != nil {
		return nil, err
	}
	return &Moments{Mean: mean, Variance: variance}, nil
}
