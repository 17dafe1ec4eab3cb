package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/surrogates"
)

// minVariance keeps log densities finite for zero-variance predictions.
const minVariance = 1e-12

func checkPosterior(op string, p *surrogates.Posterior, yTrue *mat.VecDense) error {
	if p == nil || p.Mean == nil {
		return errors.NewValueError(op, "nil posterior")
	}
	if yTrue == nil || yTrue.Len() == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if p.Len() != yTrue.Len() {
		return errors.NewDimensionError(op, yTrue.Len(), p.Len(), 0)
	}
	return nil
}

// GaussianNLPD is the mean negative log predictive density of yTrue under
// the marginals of p. Lower is better; correlations are ignored.
func GaussianNLPD(p *surrogates.Posterior, yTrue *mat.VecDense) (float64, error) {
	if err := checkPosterior("GaussianNLPD", p, yTrue); err != nil {
		return 0, err
	}
	variance := p.Variance()
	var sum float64
	for i, v := range variance {
		n := distuv.Normal{Mu: p.Mean.AtVec(i), Sigma: math.Sqrt(math.Max(v, minVariance))}
		sum -= n.LogProb(yTrue.AtVec(i))
	}
	return sum / float64(len(variance)), nil
}

// Coverage is the fraction of yTrue inside the central interval of p with
// the given probability mass, e.g. 0.95. A calibrated posterior has coverage
// close to mass.
func Coverage(p *surrogates.Posterior, yTrue *mat.VecDense, mass float64) (float64, error) {
	if err := checkPosterior("Coverage", p, yTrue); err != nil {
		return 0, err
	}
	if mass <= 0 || mass >= 1 {
		return 0, errors.NewValueError("Coverage", "mass must be in (0, 1)")
	}
	z := distuv.UnitNormal.Quantile(0.5 + mass/2)
	sd := p.Stddev()
	inside := 0
	for i, s := range sd {
		if math.Abs(yTrue.AtVec(i)-p.Mean.AtVec(i)) <= z*s {
			inside++
		}
	}
	return float64(inside) / float64(len(sd)), nil
}
