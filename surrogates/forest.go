package surrogates

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/tree"
)

// RandomForestSurrogate uses the spread of a bootstrap forest as predictive
// variance.
type RandomForestSurrogate struct {
	Base

	NEstimators int     `json:"n_estimators" yaml:"n_estimators"`
	MaxDepth    int     `json:"max_depth" yaml:"max_depth"`
	MaxFeatures float64 `json:"max_features" yaml:"max_features"`
	RandomState int64   `json:"random_state" yaml:"random_state"`

	model *tree.RandomForest
}

// NewRandomForestSurrogate creates an untrained surrogate with 100 fully
// grown trees and seed 0.
func NewRandomForestSurrogate() *RandomForestSurrogate {
	s := &RandomForestSurrogate{
		NEstimators: 100,
		MaxFeatures: 1.0,
	}
	s.Base = newBase(s)
	return s
}

func (s *RandomForestSurrogate) Kind() Kind          { return KindRandomForest }
func (s *RandomForestSurrogate) Family() ModelFamily { return FamilyEnsemble }

func (s *RandomForestSurrogate) Capabilities() Capabilities {
	return Capabilities{}
}

// Model returns the fitted forest, or nil before Fit.
func (s *RandomForestSurrogate) Model() *tree.RandomForest { return s.model }

func (s *RandomForestSurrogate) fitModel(x, y *mat.Dense, _ ModelContext) error {
	rf := tree.NewRandomForest(
		[]tree.ForestOption{tree.WithNEstimators(s.NEstimators)},
		tree.WithMaxDepth(s.MaxDepth),
		tree.WithMaxFeatures(s.MaxFeatures),
		tree.WithRandomState(s.RandomState),
	)
	if err := rf.Fit(x, y); err != nil {
		return err
	}
	s.model = rf
	return nil
}

func (s *RandomForestSurrogate) estimateMoments(x *mat.Dense) (*Moments, error) {
	mean, variance, err := s.model.PredictMoments(x)
	if err != nil {
		return nil, err
	}
	return &Moments{Mean: mean, Variance: variance}, nil
}
