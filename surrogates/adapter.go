package surrogates

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/pkg/errors"
)

// Adapter exposes a fitted surrogate to numerical consumers such as
// acquisition functions, which work on scaled computational matrices rather
// than experimental frames. Posteriors are still reported in original
// target units.
type Adapter struct {
	base *Base
}

// NumOutputs returns the number of model outputs.
func (a *Adapter) NumOutputs() int { return 1 }

// NumInputs returns the number of computational input columns.
func (a *Adapter) NumInputs() int {
	return len(a.base.transforms.inputScaler.GetFeatureNamesOut())
}

// InputColumns returns the names of the computational input columns.
func (a *Adapter) InputColumns() []string {
	return a.base.transforms.inputScaler.GetFeatureNamesOut()
}

// Posterior evaluates the model on rows of X, given in scaled computational
// representation with columns ordered as InputColumns.
func (a *Adapter) Posterior(X mat.Matrix) (_ *Posterior, err error) {
	defer errors.Recover(&err, "Adapter.Posterior")
	r, c := X.Dims()
	if r == 0 {
		return nil, errors.NewModelError("Adapter.Posterior", "no candidates", errors.ErrEmptyData)
	}
	if c != a.NumInputs() {
		return nil, errors.NewDimensionError("Adapter.Posterior", a.NumInputs(), c, 1)
	}
	return a.base.posterior(mat.DenseCopyOf(X))
}
