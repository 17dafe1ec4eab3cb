package tree

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/surrogo/core/model"
	"github.com/ezoic/surrogo/core/parallel"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/pkg/log"
)

// RandomForest is a bagged ensemble of regression trees.
type RandomForest struct {
	state *model.StateManager

	NEstimators int
	Bootstrap   bool
	params      treeParams

	trees     []*RegressionTree
	nFeatures int
	logger    log.Logger
}

// ForestOption configures the ensemble itself. Tree options are passed as
// Option values to NewRandomForest.
type ForestOption func(*RandomForest)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) ForestOption {
	return func(f *RandomForest) { f.NEstimators = n }
}

// WithBootstrap toggles bootstrap resampling of the training rows.
func WithBootstrap(b bool) ForestOption {
	return func(f *RandomForest) { f.Bootstrap = b }
}

// NewRandomForest creates a forest of 100 bootstrapped trees. Tree options
// apply to every member; the random state seeds the whole ensemble.
//
// Example:
//
//	rf := tree.NewRandomForest([]tree.ForestOption{tree.WithNEstimators(50)},
//		tree.WithMaxDepth(8), tree.WithRandomState(1))
func NewRandomForest(forestOpts []ForestOption, opts ...Option) *RandomForest {
	p := defaultParams()
	for _, opt := range opts {
		opt(&p)
	}
	f := &RandomForest{
		state:       model.NewStateManager(),
		NEstimators: 100,
		Bootstrap:   true,
		params:      p,
	}
	for _, opt := range forestOpts {
		opt(f)
	}
	f.logger = log.GetLoggerWithName("tree").With(
		log.ModelNameKey, "RandomForest",
		log.ComponentKey, "tree",
	)
	return f
}

// Fit trains every tree on its own bootstrap sample. The samples and per-tree
// seeds are drawn up front so results do not depend on scheduling.
func (f *RandomForest) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RandomForest.Fit")
	start := time.Now()

	if f.NEstimators < 1 {
		return errors.NewValueError("RandomForest.Fit", fmt.Sprintf("n_estimators must be >= 1, got %d", f.NEstimators))
	}
	if err := f.params.validate("RandomForest.Fit"); err != nil {
		return err
	}
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("RandomForest.Fit", "empty data", errors.ErrEmptyData)
	}

	f.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, n,
		log.FeaturesKey, p,
	)

	seed := f.params.randomState
	if seed < 0 {
		seed = 0
	}
	master := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	samples := make([][]int, f.NEstimators)
	seeds := make([]uint64, f.NEstimators)
	for k := range samples {
		idx := make([]int, n)
		for i := range idx {
			if f.Bootstrap {
				idx[i] = master.IntN(n)
			} else {
				idx[i] = i
			}
		}
		samples[k] = idx
		seeds[k] = master.Uint64()
	}

	trees := make([]*RegressionTree, f.NEstimators)
	err = parallel.ParallelizeErr(context.Background(), f.NEstimators, func(ctx context.Context, s, e int) error {
		for k := s; k < e; k++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := newTree(f.params)
			if err := t.fitIndices(X, y, samples[k], rand.New(rand.NewPCG(seeds[k], uint64(k)))); err != nil {
				return err
			}
			trees[k] = t
		}
		return nil
	})
	if err != nil {
		return err
	}

	f.trees = trees
	f.nFeatures = p
	f.state.SetFitted()
	f.state.SetDimensions(p, n)

	f.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.SamplesKey, n,
		log.FeaturesKey, p,
	)
	return nil
}

// Predict returns the mean prediction of the trees as an (n_samples, 1) matrix.
func (f *RandomForest) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "RandomForest.Predict")
	mean, _, err := f.PredictMoments(X)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(mean.Len(), 1, mean.RawVector().Data), nil
}

// PredictMoments returns the mean and the unbiased variance of the tree
// predictions. A single-tree forest reports zero variance.
func (f *RandomForest) PredictMoments(X mat.Matrix) (_, _ *mat.VecDense, err error) {
	defer errors.Recover(&err, "RandomForest.PredictMoments")
	if !f.state.IsFitted() {
		return nil, nil, errors.NewNotFittedError("RandomForest", "PredictMoments")
	}
	n, p := X.Dims()
	if p != f.nFeatures {
		return nil, nil, errors.NewDimensionError("RandomForest.PredictMoments", f.nFeatures, p, 1)
	}

	mean := mat.NewVecDense(n, nil)
	variance := mat.NewVecDense(n, nil)
	parallel.ParallelizeWithThreshold(n, 256, func(s, e int) {
		preds := make([]float64, len(f.trees))
		for i := s; i < e; i++ {
			for k, t := range f.trees {
				preds[k] = t.predictRow(X, i)
			}
			if len(preds) == 1 {
				mean.SetVec(i, preds[0])
				continue
			}
			m, v := stat.MeanVariance(preds, nil)
			mean.SetVec(i, m)
			variance.SetVec(i, v)
		}
	})
	return mean, variance, nil
}

// IsFitted returns whether the forest has been trained.
func (f *RandomForest) IsFitted() bool { return f.state.IsFitted() }

// Trees returns the fitted members.
func (f *RandomForest) Trees() []*RegressionTree { return f.trees }

// GetParams returns the ensemble and tree hyperparameters.
func (f *RandomForest) GetParams() map[string]interface{} {
	params := newTree(f.params).GetParams()
	params["n_estimators"] = f.NEstimators
	params["bootstrap"] = f.Bootstrap
	return params
}
