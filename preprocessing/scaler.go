// Package preprocessing provides the scalers and encoders surrogo uses to move
// between experimental values and well conditioned model inputs.
//
//   - MinMaxScaler: maps each column to a range, fitted on data or on declared bounds
//   - StandardScaler: removes the mean and scales to unit variance
//   - ColumnTransformer: applies one scaler (or passthrough) per group of frame columns
//   - OneHotEncoder: encodes categorical labels as 0/1 columns
//
// Scalers follow the Fit / Transform / FitTransform / InverseTransform pattern
// and embed model.BaseEstimator for their fitted state.
//
// Example usage:
//
//	scaler := preprocessing.NewMinMaxScalerDefault()
//	if err := scaler.FitBounds([]float64{0}, []float64{10}); err != nil {
//		log.Fatal(err)
//	}
//	scaled, err := scaler.Transform(X)
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/surrogo/core/model"
	"github.com/ezoic/surrogo/pkg/errors"
)

// minScale はゼロ除算を避けるための下限
const minScale = 1e-8

// StandardScaler standardizes columns to zero mean and unit variance.
//
// DDOF selects the variance estimator: 0 for the population variance, 1 for
// the unbiased sample variance used when standardizing targets.
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各列の平均値
	Mean []float64

	// Scale は各列の標準偏差
	Scale []float64

	NFeatures int

	WithMean bool
	WithStd  bool
	DDOF     int
}

// NewStandardScaler creates a StandardScaler.
//
// Parameters:
//   - withMean: whether to center the data by removing the mean
//   - withStd: whether to divide by the standard deviation
//
// Example:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	err := scaler.Fit(X)
//	Xs, err := scaler.Transform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{WithMean: withMean, WithStd: withStd}
}

// NewStandardScalerDefault creates a StandardScaler with centering and scaling.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// NewTargetStandardizer creates the scaler used for surrogate targets: unbiased
// standard deviation, and a unit scale whenever fewer than two observations
// are available.
func NewTargetStandardizer() *StandardScaler {
	s := NewStandardScaler(true, true)
	s.DDOF = 1
	return s
}

// Fit computes the column means and standard deviations of X.
//
// Errors:
//   - ErrEmptyData: if X has no rows or no columns
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer errors.Recover(&err, "StandardScaler.Fit")
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	mean := make([]float64, c)
	scale := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		if s.WithMean {
			mean[j] = stat.Mean(col, nil)
		}
		scale[j] = 1
		if !s.WithStd || r <= s.DDOF {
			continue
		}
		var ss float64
		for _, v := range col {
			d := v - mean[j]
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(r-s.DDOF))
		// 定数列はスケール1のまま
		if sd >= minScale {
			scale[j] = sd
		}
	}

	s.Mean, s.Scale, s.NFeatures = mean, scale, c
	s.SetFitted()
	return nil
}

// Transform applies (X - mean) / scale column-wise.
//
// Errors:
//   - ErrNotFitted: if the scaler hasn't been fitted yet
//   - ErrDimensionMismatch: if X has a different number of columns than in Fit
func (s *StandardScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "StandardScaler.Transform")
	if err := s.check(X, "Transform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return out, nil
}

// FitTransform fits the scaler on X and returns the transformed X.
func (s *StandardScaler) FitTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "StandardScaler.FitTransform")
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized values back: X*scale + mean.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "StandardScaler.InverseTransform")
	if err := s.check(X, "InverseTransform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return v*s.Scale[j] + s.Mean[j]
	}, X)
	return out, nil
}

// UntransformGaussian maps the moments of a Gaussian over standardized values
// of a single column back to the original units. The mean is shifted and
// scaled, the covariance is multiplied by scale².
func (s *StandardScaler) UntransformGaussian(mean mat.Vector, cov mat.Symmetric) (_ *mat.VecDense, _ *mat.SymDense, err error) {
	defer errors.Recover(&err, "StandardScaler.UntransformGaussian")
	if !s.IsFitted() {
		return nil, nil, errors.NewNotFittedError("StandardScaler", "UntransformGaussian")
	}
	if s.NFeatures != 1 {
		return nil, nil, errors.NewDimensionError("StandardScaler.UntransformGaussian", 1, s.NFeatures, 1)
	}
	n := mean.Len()
	if cov.SymmetricDim() != n {
		return nil, nil, errors.NewDimensionError("StandardScaler.UntransformGaussian", n, cov.SymmetricDim(), 0)
	}

	mu, sd := s.Mean[0], s.Scale[0]
	outMean := mat.NewVecDense(n, nil)
	outMean.AddScaledVec(outMean, sd, mean)
	for i := 0; i < n; i++ {
		outMean.SetVec(i, outMean.AtVec(i)+mu)
	}
	outCov := mat.NewSymDense(n, nil)
	outCov.ScaleSym(sd*sd, cov)
	return outMean, outCov, nil
}

func (s *StandardScaler) check(X mat.Matrix, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError("StandardScaler", method)
	}
	if _, c := X.Dims(); c != s.NFeatures {
		return errors.NewDimensionError("StandardScaler."+method, s.NFeatures, c, 1)
	}
	return nil
}

// GetParams returns the constructor parameters.
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
		"ddof":      s.DDOF,
	}
}

func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}

// MinMaxScaler linearly maps each column from [DataMin, DataMax] to
// FeatureRange. It can be fitted on observed data (Fit) or on declared bounds
// (FitBounds). Missing values (NaN) pass through as NaN.
type MinMaxScaler struct {
	model.BaseEstimator

	// DataMin / DataMax は学習時の各列の範囲
	DataMin []float64
	DataMax []float64

	// Scale は DataMax - DataMin（定数列では1）
	Scale []float64

	NFeatures    int
	FeatureRange [2]float64
}

// NewMinMaxScaler creates a MinMaxScaler with the given output range.
//
// Example:
//
//	scaler := preprocessing.NewMinMaxScaler([2]float64{-1, 1})
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{FeatureRange: featureRange}
}

// NewMinMaxScalerDefault creates a MinMaxScaler mapping to [0, 1].
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0, 1})
}

// Fit learns per-column minimum and maximum from X, ignoring NaN cells.
//
// Errors:
//   - ErrEmptyData: if X is empty or a column has no finite values
func (m *MinMaxScaler) Fit(X mat.Matrix) (err error) {
	defer errors.Recover(&err, "MinMaxScaler.Fit")
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	lower := make([]float64, c)
	upper := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		finite := col[:0:0]
		for _, v := range col {
			if !math.IsNaN(v) {
				finite = append(finite, v)
			}
		}
		if len(finite) == 0 {
			return errors.NewModelError("MinMaxScaler.Fit",
				fmt.Sprintf("column %d has no finite values", j), errors.ErrEmptyData)
		}
		lower[j], upper[j] = floats.Min(finite), floats.Max(finite)
	}
	return m.FitBounds(lower, upper)
}

// FitBounds fits the scaler on declared per-column bounds instead of data.
// The result is independent of any particular batch of observations.
func (m *MinMaxScaler) FitBounds(lower, upper []float64) (err error) {
	defer errors.Recover(&err, "MinMaxScaler.FitBounds")
	if len(lower) == 0 {
		return errors.NewModelError("MinMaxScaler.FitBounds", "empty bounds", errors.ErrEmptyData)
	}
	if len(lower) != len(upper) {
		return errors.NewDimensionError("MinMaxScaler.FitBounds", len(lower), len(upper), 1)
	}
	if m.FeatureRange[1] <= m.FeatureRange[0] {
		return errors.NewValueError("MinMaxScaler.FitBounds",
			fmt.Sprintf("invalid feature range [%g, %g]", m.FeatureRange[0], m.FeatureRange[1]))
	}

	c := len(lower)
	scale := make([]float64, c)
	for j := 0; j < c; j++ {
		if upper[j] < lower[j] {
			return errors.NewValueError("MinMaxScaler.FitBounds",
				fmt.Sprintf("column %d: upper bound %g is below lower bound %g", j, upper[j], lower[j]))
		}
		scale[j] = upper[j] - lower[j]
		if scale[j] < minScale {
			scale[j] = 1
		}
	}

	m.DataMin = append([]float64(nil), lower...)
	m.DataMax = append([]float64(nil), upper...)
	m.Scale = scale
	m.NFeatures = c
	m.SetFitted()
	return nil
}

// Transform scales X into FeatureRange using the fitted bounds.
//
// Errors:
//   - ErrNotFitted: if the scaler hasn't been fitted yet
//   - ErrDimensionMismatch: if X has a different number of columns than in Fit
func (m *MinMaxScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "MinMaxScaler.Transform")
	if err := m.check(X, "Transform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	width := m.FeatureRange[1] - m.FeatureRange[0]
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v-m.DataMin[j])/m.Scale[j]*width + m.FeatureRange[0]
	}, X)
	return out, nil
}

// FitTransform fits the scaler on X and returns the transformed X.
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "MinMaxScaler.FitTransform")
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform maps scaled values back to the fitted bounds.
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "MinMaxScaler.InverseTransform")
	if err := m.check(X, "InverseTransform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	width := m.FeatureRange[1] - m.FeatureRange[0]
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v-m.FeatureRange[0])/width*m.Scale[j] + m.DataMin[j]
	}, X)
	return out, nil
}

func (m *MinMaxScaler) check(X mat.Matrix, method string) error {
	if !m.IsFitted() {
		return errors.NewNotFittedError("MinMaxScaler", method)
	}
	if _, c := X.Dims(); c != m.NFeatures {
		return errors.NewDimensionError("MinMaxScaler."+method, m.NFeatures, c, 1)
	}
	return nil
}

// GetParams returns the constructor parameters.
func (m *MinMaxScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{"feature_range": m.FeatureRange}
}

func (m *MinMaxScaler) String() string {
	if !m.IsFitted() {
		return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f])", m.FeatureRange[0], m.FeatureRange[1])
	}
	return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f], n_features=%d)",
		m.FeatureRange[0], m.FeatureRange[1], m.NFeatures)
}
