package preprocessing_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/preprocessing"
)

const epsilon = 1e-10

func TestStandardScaler_BasicFunctionality(t *testing.T) {
	// Feature 1: [1, 2, 3] -> mean=2, std=0.816
	// Feature 2: [4, 5, 6] -> mean=5, std=0.816
	X := mat.NewDense(3, 2, []float64{
		1, 4,
		2, 5,
		3, 6,
	})

	scaler := preprocessing.NewStandardScalerDefault()
	if err := scaler.Fit(X); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	for j, want := range []float64{2, 5} {
		if math.Abs(scaler.Mean[j]-want) > epsilon {
			t.Errorf("Mean[%d]: expected %f, got %f", j, want, scaler.Mean[j])
		}
		if math.Abs(scaler.Scale[j]-0.816496580927726) > epsilon {
			t.Errorf("Scale[%d]: got %f", j, scaler.Scale[j])
		}
	}

	XScaled, err := scaler.Transform(X)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	want := []float64{-1.224744871391589, 0, 1.224744871391589}
	for i := range want {
		for j := 0; j < 2; j++ {
			if math.Abs(XScaled.At(i, j)-want[i]) > epsilon {
				t.Errorf("(%d,%d): expected %f, got %f", i, j, want[i], XScaled.At(i, j))
			}
		}
	}
}

func TestTargetStandardizer_UnbiasedStd(t *testing.T) {
	y := mat.NewDense(3, 1, []float64{1, 2, 3})

	s := preprocessing.NewTargetStandardizer()
	require.NoError(t, s.Fit(y))
	assert.InDelta(t, 2.0, s.Mean[0], epsilon)
	assert.InDelta(t, 1.0, s.Scale[0], epsilon)

	single := preprocessing.NewTargetStandardizer()
	require.NoError(t, single.Fit(mat.NewDense(1, 1, []float64{7})))
	assert.Equal(t, 7.0, single.Mean[0])
	assert.Equal(t, 1.0, single.Scale[0])
}

func TestStandardScaler_RoundTrip(t *testing.T) {
	cases := map[string][]float64{
		"increasing": {0.5, 1.5, 3, 10},
		"negative":   {-100, -3.25, 0, 42},
		"tiny":       {1e-9, 2e-9, 3e-9},
		"constant":   {4, 4, 4},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			y := mat.NewDense(len(values), 1, values)
			s := preprocessing.NewTargetStandardizer()
			scaled, err := s.FitTransform(y)
			require.NoError(t, err)

			back, err := s.InverseTransform(scaled)
			require.NoError(t, err)
			for i, v := range values {
				assert.InDelta(t, v, back.At(i, 0), 1e-9*math.Max(1, math.Abs(v)))
			}
		})
	}
}

func TestStandardScaler_UntransformGaussian(t *testing.T) {
	s := preprocessing.NewTargetStandardizer()
	require.NoError(t, s.Fit(mat.NewDense(3, 1, []float64{10, 20, 30})))
	// mean=20, std=10

	mean := mat.NewVecDense(2, []float64{0, 1})
	cov := mat.NewSymDense(2, []float64{1, 0.5, 0.5, 2})
	m, c, err := s.UntransformGaussian(mean, cov)
	require.NoError(t, err)

	assert.InDelta(t, 20, m.AtVec(0), epsilon)
	assert.InDelta(t, 30, m.AtVec(1), epsilon)
	assert.InDelta(t, 100, c.At(0, 0), epsilon)
	assert.InDelta(t, 50, c.At(0, 1), epsilon)
	assert.InDelta(t, 200, c.At(1, 1), epsilon)

	multi := preprocessing.NewStandardScalerDefault()
	require.NoError(t, multi.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, _, err = multi.UntransformGaussian(mean, cov)
	assert.ErrorIs(t, err, errors.ErrDimensionMismatch)
}

func TestStandardScaler_WithoutMeanOrStd(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{2, 4})

	noMean := preprocessing.NewStandardScaler(false, true)
	require.NoError(t, noMean.Fit(X))
	assert.Equal(t, 0.0, noMean.Mean[0])

	noStd := preprocessing.NewStandardScaler(true, false)
	out, err := noStd.FitTransform(X)
	require.NoError(t, err)
	assert.Equal(t, 1.0, noStd.Scale[0])
	assert.InDelta(t, -1, out.At(0, 0), epsilon)
}

func TestStandardScaler_ErrorCases(t *testing.T) {
	s := preprocessing.NewStandardScalerDefault()

	_, err := s.Transform(mat.NewDense(1, 1, []float64{1}))
	assert.ErrorIs(t, err, errors.ErrNotFitted)

	require.NoError(t, s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = s.Transform(mat.NewDense(1, 3, []float64{1, 2, 3}))
	assert.ErrorIs(t, err, errors.ErrDimensionMismatch)

	err = s.Fit(&mat.Dense{})
	assert.Error(t, err)
}

func TestStandardScaler_String(t *testing.T) {
	s := preprocessing.NewStandardScalerDefault()
	assert.Equal(t, "StandardScaler(with_mean=true, with_std=true)", s.String())
	require.NoError(t, s.Fit(mat.NewDense(2, 1, []float64{1, 2})))
	assert.Equal(t, "StandardScaler(with_mean=true, with_std=true, n_features=1)", s.String())
	assert.Equal(t, 0, s.GetParams()["ddof"])
}

func TestMinMaxScaler_FitBounds(t *testing.T) {
	m := preprocessing.NewMinMaxScalerDefault()
	require.NoError(t, m.FitBounds([]float64{0, -5}, []float64{10, 5}))

	X := mat.NewDense(3, 2, []float64{
		0, -5,
		5, 0,
		10, 5,
	})
	out, err := m.Transform(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0.5, 0.5, 1, 1}, out.(*mat.Dense).RawMatrix().Data)

	back, err := m.InverseTransform(out)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, epsilon))
}

func TestMinMaxScaler_FitIgnoresNaN(t *testing.T) {
	m := preprocessing.NewMinMaxScalerDefault()
	X := mat.NewDense(3, 1, []float64{2, math.NaN(), 6})
	out, err := m.FitTransform(X)
	require.NoError(t, err)

	assert.Equal(t, 2.0, m.DataMin[0])
	assert.Equal(t, 6.0, m.DataMax[0])
	assert.Equal(t, 0.0, out.At(0, 0))
	assert.True(t, math.IsNaN(out.At(1, 0)))
	assert.Equal(t, 1.0, out.At(2, 0))

	err = preprocessing.NewMinMaxScalerDefault().Fit(mat.NewDense(1, 1, []float64{math.NaN()}))
	assert.ErrorIs(t, err, errors.ErrEmptyData)
}

func TestMinMaxScaler_CustomRange(t *testing.T) {
	m := preprocessing.NewMinMaxScaler([2]float64{-1, 1})
	require.NoError(t, m.FitBounds([]float64{0}, []float64{4}))
	out, err := m.Transform(mat.NewDense(3, 1, []float64{0, 2, 4}))
	require.NoError(t, err)
	assert.InDelta(t, -1, out.At(0, 0), epsilon)
	assert.InDelta(t, 0, out.At(1, 0), epsilon)
	assert.InDelta(t, 1, out.At(2, 0), epsilon)
}

func TestMinMaxScaler_ConstantFeature(t *testing.T) {
	m := preprocessing.NewMinMaxScalerDefault()
	require.NoError(t, m.FitBounds([]float64{3}, []float64{3}))
	out, err := m.Transform(mat.NewDense(1, 1, []float64{3}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.At(0, 0))
}

func TestMinMaxScaler_ErrorCases(t *testing.T) {
	m := preprocessing.NewMinMaxScalerDefault()
	_, err := m.Transform(mat.NewDense(1, 1, []float64{0}))
	assert.ErrorIs(t, err, errors.ErrNotFitted)

	assert.ErrorIs(t, m.FitBounds([]float64{0}, []float64{1, 2}), errors.ErrDimensionMismatch)
	assert.ErrorIs(t, m.FitBounds([]float64{2}, []float64{1}), errors.ErrInvalidValue)
	assert.ErrorIs(t, preprocessing.NewMinMaxScaler([2]float64{1, 0}).FitBounds([]float64{0}, []float64{1}),
		errors.ErrInvalidValue)

	require.NoError(t, m.FitBounds([]float64{0}, []float64{1}))
	_, err = m.InverseTransform(mat.NewDense(1, 2, nil))
	assert.ErrorIs(t, err, errors.ErrDimensionMismatch)
	assert.Equal(t, "MinMaxScaler(feature_range=[0.0, 1.0], n_features=1)", m.String())
}
