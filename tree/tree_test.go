package tree

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/core/model"
	"github.com/ezoic/surrogo/pkg/errors"
)

var (
	_ model.MomentEstimator = (*RandomForest)(nil)
)

func stepData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(8, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7})
	y := mat.NewDense(8, 1, []float64{1, 1, 1, 1, 5, 5, 5, 5})
	return X, y
}

func TestRegressionTree_Step(t *testing.T) {
	X, y := stepData()
	tr := NewRegressionTree()
	require.NoError(t, tr.Fit(X, y))

	assert.Equal(t, 2, tr.GetNLeaves())
	assert.Equal(t, 1, tr.GetDepth())
	assert.InDelta(t, 3.5, tr.root.Threshold, 1e-12)

	pred, err := tr.Predict(mat.NewDense(2, 1, []float64{0.5, 6.5}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, pred.At(0, 0))
	assert.Equal(t, 5.0, pred.At(1, 0))
	assert.Equal(t, []float64{1}, tr.GetFeatureImportances())
}

func TestRegressionTree_MaxDepth(t *testing.T) {
	X := mat.NewDense(8, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7})
	y := mat.NewDense(8, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7})

	tr := NewRegressionTree(WithMaxDepth(2))
	require.NoError(t, tr.Fit(X, y))
	assert.Equal(t, 2, tr.GetDepth())
	assert.Equal(t, 4, tr.GetNLeaves())

	full := NewRegressionTree()
	require.NoError(t, full.Fit(X, y))
	assert.Equal(t, 8, full.GetNLeaves())
}

func TestRegressionTree_MinSamplesLeaf(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{0, 1, 2, 3, 4, 5})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 0, 0, 10})

	tr := NewRegressionTree(WithMinSamplesLeaf(3))
	require.NoError(t, tr.Fit(X, y))
	assert.Equal(t, 2, tr.GetNLeaves())
	assert.Equal(t, 3, tr.root.Left.NSamples)
}

func TestRegressionTree_ConstantTarget(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	y := mat.NewDense(4, 1, []float64{2, 2, 2, 2})
	tr := NewRegressionTree()
	require.NoError(t, tr.Fit(X, y))
	assert.Equal(t, 1, tr.GetNLeaves())
	assert.Equal(t, []float64{0, 0}, tr.GetFeatureImportances())
}

func TestRegressionTree_Errors(t *testing.T) {
	tests := []struct {
		name    string
		tree    *RegressionTree
		X, y    *mat.Dense
		wantErr error
	}{
		{"empty", NewRegressionTree(), &mat.Dense{}, &mat.Dense{}, errors.ErrEmptyData},
		{"rows", NewRegressionTree(), mat.NewDense(2, 1, nil), mat.NewDense(3, 1, nil), errors.ErrDimensionMismatch},
		{"bad split", NewRegressionTree(WithMinSamplesSplit(1)), mat.NewDense(2, 1, nil), mat.NewDense(2, 1, nil), errors.ErrInvalidValue},
		{"bad features", NewRegressionTree(WithMaxFeatures(0)), mat.NewDense(2, 1, nil), mat.NewDense(2, 1, nil), errors.ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tree.Fit(tt.X, tt.y)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, tt.tree.IsFitted())
		})
	}

	_, err := NewRegressionTree().Predict(mat.NewDense(1, 1, nil))
	assert.ErrorIs(t, err, errors.ErrNotFitted)
}

func friedman(n int, seed int64) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	X := mat.NewDense(n, 3, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		a, b, c := rng.Float64(), rng.Float64(), rng.Float64()
		X.SetRow(i, []float64{a, b, c})
		y.Set(i, 0, 10*math.Sin(math.Pi*a*b)+5*c)
	}
	return X, y
}

func TestRandomForest_FitPredict(t *testing.T) {
	X, y := friedman(200, 1)
	rf := NewRandomForest([]ForestOption{WithNEstimators(20)}, WithRandomState(7))
	require.NoError(t, rf.Fit(X, y))
	assert.Len(t, rf.Trees(), 20)

	test, truth := friedman(50, 2)
	mean, variance, err := rf.PredictMoments(test)
	require.NoError(t, err)

	var sse, sst, avg float64
	for i := 0; i < 50; i++ {
		avg += truth.At(i, 0) / 50
	}
	for i := 0; i < 50; i++ {
		sse += math.Pow(mean.AtVec(i)-truth.At(i, 0), 2)
		sst += math.Pow(truth.At(i, 0)-avg, 2)
		assert.GreaterOrEqual(t, variance.AtVec(i), 0.0)
	}
	assert.Greater(t, 1-sse/sst, 0.6)
}

func TestRandomForest_Reproducible(t *testing.T) {
	X, y := friedman(60, 3)
	a := NewRandomForest([]ForestOption{WithNEstimators(10)}, WithRandomState(42), WithMaxFeatures(0.5))
	b := NewRandomForest([]ForestOption{WithNEstimators(10)}, WithRandomState(42), WithMaxFeatures(0.5))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	ma, va, err := a.PredictMoments(X)
	require.NoError(t, err)
	mb, vb, err := b.PredictMoments(X)
	require.NoError(t, err)
	assert.Equal(t, ma.RawVector().Data, mb.RawVector().Data)
	assert.Equal(t, va.RawVector().Data, vb.RawVector().Data)
}

func TestRandomForest_NoBootstrapAgrees(t *testing.T) {
	X, y := stepData()
	rf := NewRandomForest([]ForestOption{WithNEstimators(5), WithBootstrap(false)})
	require.NoError(t, rf.Fit(X, y))

	mean, variance, err := rf.PredictMoments(mat.NewDense(1, 1, []float64{6}))
	require.NoError(t, err)
	assert.Equal(t, 5.0, mean.AtVec(0))
	assert.Equal(t, 0.0, variance.AtVec(0))
}

func TestRandomForest_Errors(t *testing.T) {
	rf := NewRandomForest([]ForestOption{WithNEstimators(0)})
	X, y := stepData()
	assert.ErrorIs(t, rf.Fit(X, y), errors.ErrInvalidValue)

	rf = NewRandomForest(nil)
	_, _, err := rf.PredictMoments(X)
	assert.ErrorIs(t, err, errors.ErrNotFitted)

	require.NoError(t, rf.Fit(X, y))
	_, _, err = rf.PredictMoments(mat.NewDense(1, 2, nil))
	assert.ErrorIs(t, err, errors.ErrDimensionMismatch)

	params := rf.GetParams()
	assert.Equal(t, 100, params["n_estimators"])
	assert.Equal(t, true, params["bootstrap"])
}
