// Package metrics scores surrogate predictions against observed targets.
//
// Point metrics compare a predicted mean with the truth:
//
//   - MSE, RMSE, MAE: error magnitude in target units
//   - R2Score, ExplainedVarianceScore: fraction of variance explained
//
// Probabilistic metrics (see posterior.go) also use the predictive variance,
// which is what distinguishes surrogates with equal means but different
// calibration.
//
// Example:
//
//	post, _ := s.Posterior(candidates)
//	rmse, _ := metrics.RMSE(yTrue, post.Mean)
//	nlpd, _ := metrics.GaussianNLPD(post, yTrue)
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/surrogo/pkg/errors"
)

// residuals validates the pair and returns yTrue - yPred.
func residuals(op string, yTrue, yPred *mat.VecDense) ([]float64, error) {
	if yTrue == nil || yTrue.Len() == 0 {
		return nil, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred == nil || yPred.Len() != n {
		got := 0
		if yPred != nil {
			got = yPred.Len()
		}
		return nil, errors.NewDimensionError(op, n, got, 0)
	}
	r := make([]float64, n)
	for i := range r {
		r[i] = yTrue.AtVec(i) - yPred.AtVec(i)
	}
	return r, nil
}

// MSE is the mean squared error.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	r, err := residuals("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Dot(r, r) / float64(len(r)), nil
}

// MSEMatrix is MSE for (n, 1) column matrices.
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue == 0 || cTrue == 0 {
		return 0, errors.NewValueError("MSEMatrix", "empty matrix")
	}
	if rTrue != rPred || cTrue != cPred {
		return 0, errors.NewDimensionError("MSEMatrix", rTrue, rPred, 0)
	}
	if cTrue != 1 {
		return 0, errors.NewValueError("MSEMatrix", "must be a column vector (n×1 matrix)")
	}
	return MSE(mat.NewVecDense(rTrue, mat.Col(nil, 0, yTrue)), mat.NewVecDense(rPred, mat.Col(nil, 0, yPred)))
}

// RMSE is the square root of MSE.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE is the mean absolute error.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	r, err := residuals("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Norm(r, 1) / float64(len(r)), nil
}

// R2Score is the coefficient of determination 1 - RSS/TSS. It fails when
// yTrue is constant.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	r, err := residuals("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	ys := mat.Col(nil, 0, yTrue)
	mean := stat.Mean(ys, nil)
	var tss float64
	for _, v := range ys {
		tss += (v - mean) * (v - mean)
	}
	if tss == 0 {
		return 0, errors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - floats.Dot(r, r)/tss, nil
}

// ExplainedVarianceScore is 1 - Var(yTrue - yPred) / Var(yTrue). Unlike
// R2Score it ignores a constant bias in the predictions.
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	r, err := residuals("ExplainedVarianceScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	ys := mat.Col(nil, 0, yTrue)
	_, varTrue := stat.PopMeanVariance(ys, nil)
	if varTrue == 0 {
		return 0, errors.NewValueError("ExplainedVarianceScore", "no variance in yTrue")
	}
	_, varRes := stat.PopMeanVariance(r, nil)
	return 1 - varRes/varTrue, nil
}
