// Package linear provides Bayesian linear regression with predictive
// uncertainty.
//
//   - BayesianRidge: conjugate Gaussian linear model whose noise precision
//     (alpha) and weight precision (lambda) are chosen by evidence maximization
//
// The model reports both the predictive mean and the predictive variance, which
// makes it usable wherever a model.MomentEstimator is expected.
//
// Example usage:
//
//	br := linear.NewBayesianRidge()
//	if err := br.Fit(X, y); err != nil {
//		log.Fatal(err)
//	}
//	mean, variance, err := br.PredictMoments(XTest)
package linear

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/surrogo/core/model"
	"github.com/ezoic/surrogo/core/parallel"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/pkg/log"
)

// BayesianRidge is Bayesian linear regression with Gamma hyperpriors on the
// noise precision Alpha and the weight precision Lambda.
type BayesianRidge struct {
	State *model.StateManager // Public for gob encoding

	// Hyperparameters
	NIter   int
	Tol     float64
	Alpha1  float64
	Alpha2  float64
	Lambda1 float64
	Lambda2 float64

	// Learned parameters
	Weights   *mat.VecDense
	Intercept float64
	Alpha     float64
	Lambda    float64
	Sigma     *mat.SymDense // posterior weight covariance
	XOffset   []float64
	NFeatures int
	NIterRun  int

	logger log.Logger
}

// NewBayesianRidge creates a BayesianRidge with the usual non-informative
// hyperpriors (all Gamma shape/rate parameters 1e-6), 300 iterations and a
// coefficient tolerance of 1e-3.
//
// Example:
//
//	br := linear.NewBayesianRidge()
//	err := br.Fit(X, y)
func NewBayesianRidge() *BayesianRidge {
	br := &BayesianRidge{
		State:   model.NewStateManager(),
		NIter:   300,
		Tol:     1e-3,
		Alpha1:  1e-6,
		Alpha2:  1e-6,
		Lambda1: 1e-6,
		Lambda2: 1e-6,
	}
	br.logger = log.GetLoggerWithName("linear").With(
		log.ModelNameKey, "BayesianRidge",
		log.ComponentKey, "linear",
	)
	return br
}

// Fit estimates the posterior over the weights.
//
// X is (n_samples, n_features), y is (n_samples, 1). The data are centered,
// then alpha and lambda are updated with the MacKay fixed point iteration on
// the eigendecomposition of XᵀX until the weights move less than Tol.
//
// Errors:
//   - ErrEmptyData: if X or y are empty
//   - ErrDimensionMismatch: if X and y have different numbers of rows
//   - ErrSingularMatrix: if the posterior precision cannot be factorized
func (br *BayesianRidge) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "BayesianRidge.Fit")

	start := time.Now()
	n, p := X.Dims()
	ry, cy := y.Dims()
	br.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, n,
		log.FeaturesKey, p,
	)

	if n == 0 || p == 0 {
		return errors.NewModelError("BayesianRidge.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n {
		return errors.NewDimensionError("BayesianRidge.Fit", n, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("BayesianRidge.Fit", "y must be a column vector")
	}

	// 中心化
	xOffset := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, X)
		xOffset[j] = stat.Mean(col, nil)
	}
	yv := make([]float64, n)
	mat.Col(yv, 0, y)
	yOffset := stat.Mean(yv, nil)

	Xc := mat.NewDense(n, p, nil)
	parallel.ParallelizeWithThreshold(n, 1000, func(s, e int) {
		for i := s; i < e; i++ {
			for j := 0; j < p; j++ {
				Xc.Set(i, j, X.At(i, j)-xOffset[j])
			}
		}
	})
	yc := mat.NewVecDense(n, nil)
	for i, v := range yv {
		yc.SetVec(i, v-yOffset)
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, Xc.T())
	var eig mat.EigenSym
	if ok := eig.Factorize(&xtx, true); !ok {
		return errors.NewModelError("BayesianRidge.Fit", "eigendecomposition failed", errors.ErrSingularMatrix)
	}
	eigVals := eig.Values(nil)
	for i, v := range eigVals {
		// 数値誤差で負になった固有値を切り捨てる
		eigVals[i] = math.Max(v, 0)
	}
	var V mat.Dense
	eig.VectorsTo(&V)

	// Vᵀ Xᵀ y is reused by every coefficient update
	var xty mat.VecDense
	xty.MulVec(Xc.T(), yc)
	var proj mat.VecDense
	proj.MulVec(V.T(), &xty)

	alpha := 1 / (stat.Variance(yv, nil) + 1e-10)
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		alpha = 1
	}
	lambda := 1.0

	coef := mat.NewVecDense(p, nil)
	prev := make([]float64, p)
	shrunk := mat.NewVecDense(p, nil)
	resid := mat.NewVecDense(n, nil)
	converged := false
	iter := 0
	for iter = 1; iter <= br.NIter; iter++ {
		for k, ev := range eigVals {
			shrunk.SetVec(k, alpha*proj.AtVec(k)/(alpha*ev+lambda))
		}
		coef.MulVec(&V, shrunk)

		resid.MulVec(Xc, coef)
		resid.SubVec(yc, resid)
		rss := mat.Dot(resid, resid)

		var gamma float64
		for _, ev := range eigVals {
			gamma += alpha * ev / (lambda + alpha*ev)
		}
		lambda = (gamma + 2*br.Lambda1) / (mat.Dot(coef, coef) + 2*br.Lambda2)
		alpha = (float64(n) - gamma + 2*br.Alpha1) / (rss + 2*br.Alpha2)

		if iter > 1 && floats.Distance(prev, coef.RawVector().Data, 1) < br.Tol {
			converged = true
			break
		}
		copy(prev, coef.RawVector().Data)
	}
	if !converged {
		errors.Warn(errors.NewConvergenceWarning("BayesianRidge", br.NIter,
			fmt.Sprintf("coefficients did not converge within tolerance %g", br.Tol)))
		iter = br.NIter
	}

	// 最終的な alpha, lambda で係数と共分散を計算
	for k, ev := range eigVals {
		shrunk.SetVec(k, alpha*proj.AtVec(k)/(alpha*ev+lambda))
	}
	coef.MulVec(&V, shrunk)

	sigma := mat.NewSymDense(p, nil)
	for a := 0; a < p; a++ {
		for b := a; b < p; b++ {
			var s float64
			for k, ev := range eigVals {
				s += V.At(a, k) * V.At(b, k) / (alpha*ev + lambda)
			}
			sigma.SetSym(a, b, s)
		}
	}

	br.Weights = coef
	br.Intercept = yOffset - floats.Dot(xOffset, coef.RawVector().Data)
	br.Alpha, br.Lambda = alpha, lambda
	br.Sigma = sigma
	br.XOffset = xOffset
	br.NFeatures = p
	br.NIterRun = iter
	br.State.SetFitted()
	br.State.SetDimensions(p, n)

	br.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.IterationKey, iter,
		log.SamplesKey, n,
		log.FeaturesKey, p,
	)
	return nil
}

// Predict returns the predictive mean as an (n_samples, 1) matrix.
func (br *BayesianRidge) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "BayesianRidge.Predict")
	mean, _, err := br.PredictMoments(X)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(mean.Len(), 1, mean.RawVector().Data), nil
}

// PredictMoments returns the predictive mean and variance for every row of X.
// The variance is the noise variance 1/Alpha plus the weight uncertainty
// xᵀ Sigma x of the centered input.
func (br *BayesianRidge) PredictMoments(X mat.Matrix) (_, _ *mat.VecDense, err error) {
	defer errors.Recover(&err, "BayesianRidge.PredictMoments")
	if !br.State.IsFitted() {
		return nil, nil, errors.NewNotFittedError("BayesianRidge", "PredictMoments")
	}
	n, p := X.Dims()
	if p != br.NFeatures {
		return nil, nil, errors.NewDimensionError("BayesianRidge.PredictMoments", br.NFeatures, p, 1)
	}

	mean := mat.NewVecDense(n, nil)
	variance := mat.NewVecDense(n, nil)
	x := mat.NewVecDense(p, nil)
	var sx mat.VecDense
	// 中心化した入力に対する切片
	shift := br.Intercept + floats.Dot(br.XOffset, br.Weights.RawVector().Data)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			x.SetVec(j, X.At(i, j)-br.XOffset[j])
		}
		mean.SetVec(i, mat.Dot(x, br.Weights)+shift)
		sx.MulVec(br.Sigma, x)
		variance.SetVec(i, 1/br.Alpha+mat.Dot(x, &sx))
	}

	br.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, n,
	)
	return mean, variance, nil
}

// IsFitted returns whether the model has been fitted.
func (br *BayesianRidge) IsFitted() bool {
	return br.State.IsFitted()
}

// GetParams returns the hyperparameters.
func (br *BayesianRidge) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_iter":   br.NIter,
		"tol":      br.Tol,
		"alpha_1":  br.Alpha1,
		"alpha_2":  br.Alpha2,
		"lambda_1": br.Lambda1,
		"lambda_2": br.Lambda2,
	}
}
