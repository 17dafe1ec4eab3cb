package surrogates

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/linear"
)

// BayesianLinearSurrogate is a Bayesian ridge regression on the scaled
// computational representation.
type BayesianLinearSurrogate struct {
	Base

	NIter int     `json:"n_iter" yaml:"n_iter"`
	Tol   float64 `json:"tol" yaml:"tol"`

	model *linear.BayesianRidge
}

// NewBayesianLinearSurrogate creates an untrained surrogate with the
// defaults of linear.NewBayesianRidge.
func NewBayesianLinearSurrogate() *BayesianLinearSurrogate {
	defaults := linear.NewBayesianRidge()
	s := &BayesianLinearSurrogate{NIter: defaults.NIter, Tol: defaults.Tol}
	s.Base = newBase(s)
	return s
}

func (s *BayesianLinearSurrogate) Kind() Kind          { return KindBayesianLinear }
func (s *BayesianLinearSurrogate) Family() ModelFamily { return FamilyBayesianLinear }

func (s *BayesianLinearSurrogate) Capabilities() Capabilities {
	return Capabilities{}
}

// Model returns the fitted regression, or nil before Fit.
func (s *BayesianLinearSurrogate) Model() *linear.BayesianRidge { return s.model }

func (s *BayesianLinearSurrogate) fitModel(x, y *mat.Dense, _ ModelContext) error {
	br := linear.NewBayesianRidge()
	br.NIter = s.NIter
	br.Tol = s.Tol
	if err := br.Fit(x, y); err != nil {
		return err
	}
	s.model = br
	return nil
}

func (s *BayesianLinearSurrogate) estimateMoments(x *mat.Dense) (*Moments, error) {
	mean, variance, err := s.model.PredictMoments(x)
	if err != nil {
		return nil, err
	}
	return &Moments{Mean: mean, Variance: variance}, nil
}
