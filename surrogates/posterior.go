package surrogates

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/ezoic/surrogo/pkg/errors"
)

// Moments are the first and second moments estimated by a model in scaled
// space. Exactly one of Variance (marginal) or Covariance (joint) is set.
type Moments struct {
	Mean       *mat.VecDense
	Variance   *mat.VecDense
	Covariance *mat.SymDense
}

// Posterior is a multivariate Gaussian over the outputs at a set of
// candidates. For surrogates without a joint posterior the covariance is
// diagonal.
type Posterior struct {
	Mean       *mat.VecDense
	Covariance *mat.SymDense
}

// newGaussianPosterior assembles a posterior from estimated moments. With
// joint=false the marginal variances are placed on the diagonal and every
// off-diagonal entry is zero.
func newGaussianPosterior(m *Moments, joint bool) (*Posterior, error) {
	if m == nil || m.Mean == nil {
		return nil, errors.NewValueError("surrogates.Posterior", "model returned no mean")
	}
	n := m.Mean.Len()

	var cov *mat.SymDense
	switch {
	case joint:
		if m.Covariance == nil {
			return nil, errors.NewValueError("surrogates.Posterior", "joint model returned no covariance")
		}
		if m.Covariance.SymmetricDim() != n {
			return nil, errors.NewDimensionError("surrogates.Posterior", n, m.Covariance.SymmetricDim(), 0)
		}
		cov = m.Covariance
	default:
		if m.Variance == nil {
			return nil, errors.NewValueError("surrogates.Posterior", "model returned no variance")
		}
		if m.Variance.Len() != n {
			return nil, errors.NewDimensionError("surrogates.Posterior", n, m.Variance.Len(), 0)
		}
		cov = mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			cov.SetSym(i, i, m.Variance.AtVec(i))
		}
	}
	return &Posterior{Mean: m.Mean, Covariance: cov}, nil
}

// Len returns the number of candidates.
func (p *Posterior) Len() int { return p.Mean.Len() }

// Variance returns the marginal variances.
func (p *Posterior) Variance() []float64 {
	out := make([]float64, p.Len())
	for i := range out {
		out[i] = p.Covariance.At(i, i)
	}
	return out
}

// Stddev returns the marginal standard deviations.
func (p *Posterior) Stddev() []float64 {
	out := p.Variance()
	for i, v := range out {
		out[i] = math.Sqrt(math.Max(v, 0))
	}
	return out
}

// Distribution returns the posterior as a gonum multivariate normal. A
// degenerate covariance (e.g. zero variance everywhere) is regularized with
// a growing diagonal jitter. src may be nil when no samples are drawn.
func (p *Posterior) Distribution(src rand.Source) (*distmv.Normal, error) {
	mu := append([]float64(nil), p.Mean.RawVector().Data...)
	if d, ok := distmv.NewNormal(mu, p.Covariance, src); ok {
		return d, nil
	}

	n := p.Len()
	scale := 1.0
	for i := 0; i < n; i++ {
		scale = math.Max(scale, math.Abs(p.Covariance.At(i, i)))
	}
	jittered := mat.NewSymDense(n, nil)
	for jitter := 1e-10; jitter <= 1e-4; jitter *= 100 {
		jittered.CopySym(p.Covariance)
		for i := 0; i < n; i++ {
			jittered.SetSym(i, i, jittered.At(i, i)+jitter*scale)
		}
		if d, ok := distmv.NewNormal(mu, jittered, src); ok {
			return d, nil
		}
	}
	return nil, errors.NewModelError("Posterior.Distribution",
		fmt.Sprintf("covariance over %d candidates is not positive definite", n), errors.ErrSingularMatrix)
}

// IsDiagonal reports whether every off-diagonal covariance entry is zero.
func (p *Posterior) IsDiagonal() bool {
	n := p.Len()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if p.Covariance.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}
