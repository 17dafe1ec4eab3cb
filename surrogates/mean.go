package surrogates

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/surrogo/pkg/errors"
)

// MeanPredictionSurrogate predicts the mean of the training targets
// everywhere, with unit variance in scaled space. It serves as a baseline.
type MeanPredictionSurrogate struct {
	Base

	mean float64
}

// NewMeanPredictionSurrogate creates an untrained mean predictor.
func NewMeanPredictionSurrogate() *MeanPredictionSurrogate {
	s := &MeanPredictionSurrogate{}
	s.Base = newBase(s)
	return s
}

func (s *MeanPredictionSurrogate) Kind() Kind          { return KindMeanPrediction }
func (s *MeanPredictionSurrogate) Family() ModelFamily { return FamilyConstant }

func (s *MeanPredictionSurrogate) Capabilities() Capabilities {
	return Capabilities{}
}

// Mean returns the fitted mean in scaled space.
func (s *MeanPredictionSurrogate) Mean() float64 { return s.mean }

func (s *MeanPredictionSurrogate) fitModel(_, y *mat.Dense, _ ModelContext) error {
	n, _ := y.Dims()
	if n == 0 {
		return errors.NewModelError("MeanPredictionSurrogate.Fit", "no training targets", errors.ErrEmptyData)
	}
	s.mean = stat.Mean(mat.Col(nil, 0, y), nil)
	return nil
}

func (s *MeanPredictionSurrogate) estimateMoments(x *mat.Dense) (*Moments, error) {
	n, _ := x.Dims()
	mean := mat.NewVecDense(n, nil)
	variance := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		mean.SetVec(i, s.mean)
		variance.SetVec(i, 1)
	}
	return &Moments{Mean: mean, Variance: variance}, nil
}
