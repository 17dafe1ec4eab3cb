package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/surrogates"
)

func vec(v ...float64) *mat.VecDense { return mat.NewVecDense(len(v), v) }

func TestPointMetrics(t *testing.T) {
	yTrue := vec(1, 2, 3, 4)
	yPred := vec(1.5, 2, 2, 4)

	mse, err := MSE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.3125, mse, 1e-12)

	rmse, err := RMSE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(0.3125), rmse, 1e-12)

	mae, err := MAE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.375, mae, 1e-12)

	r2, err := R2Score(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 1-1.25/5, r2, 1e-12)

	ev, err := ExplainedVarianceScore(yTrue, vec(2, 3, 4, 5))
	require.NoError(t, err)
	assert.InDelta(t, 1, ev, 1e-12)

	m, err := MSEMatrix(mat.NewDense(4, 1, []float64{1, 2, 3, 4}), mat.NewDense(4, 1, []float64{1.5, 2, 2, 4}))
	require.NoError(t, err)
	assert.InDelta(t, mse, m, 1e-12)
}

func TestPointMetricErrors(t *testing.T) {
	_, err := MSE(vec(), vec())
	assert.Error(t, err)
	_, err = MAE(vec(1, 2), vec(1))
	assert.ErrorIs(t, err, errors.ErrDimensionMismatch)
	_, err = R2Score(vec(3, 3, 3), vec(1, 2, 3))
	assert.Error(t, err)
	_, err = MSEMatrix(mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil))
	assert.Error(t, err)
}

func posterior(t *testing.T, mean, variance []float64) *surrogates.Posterior {
	t.Helper()
	cov := mat.NewSymDense(len(mean), nil)
	for i, v := range variance {
		cov.SetSym(i, i, v)
	}
	return &surrogates.Posterior{Mean: vec(mean...), Covariance: cov}
}

func TestGaussianNLPD(t *testing.T) {
	p := posterior(t, []float64{0, 0}, []float64{1, 1})
	nlpd, err := GaussianNLPD(p, vec(0, 0))
	require.NoError(t, err)
	assert.InDelta(t, 0.5*math.Log(2*math.Pi), nlpd, 1e-12)

	worse, err := GaussianNLPD(p, vec(3, -3))
	require.NoError(t, err)
	assert.Greater(t, worse, nlpd)

	degenerate := posterior(t, []float64{1}, []float64{0})
	v, err := GaussianNLPD(degenerate, vec(1))
	require.NoError(t, err)
	assert.False(t, math.IsInf(v, 0))

	_, err = GaussianNLPD(p, vec(1))
	assert.Error(t, err)
}

func TestCoverage(t *testing.T) {
	p := posterior(t, []float64{0, 0, 0, 0}, []float64{1, 1, 1, 1})
	c, err := Coverage(p, vec(0.5, -1.5, 2.5, 10), 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.5, c)

	_, err = Coverage(p, vec(0, 0, 0, 0), 1)
	assert.Error(t, err)
}
