package surrogates

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/core/parallel"
)

var sqrt5 = math.Sqrt(5)

// Hyperparameters of the Gaussian process kernel and likelihood.
type Hyperparameters struct {
	// Lengthscales has one entry per non-task input column.
	Lengthscales    []float64
	Outputscale     float64
	Noise           float64
	Mean            float64
	TaskCorrelation float64 // correlation between distinct tasks, 0 without a task column
}

// kernel is a scaled Matérn 5/2 kernel with automatic relevance
// determination, multiplied by a uniform task correlation when a task
// column is present.
type kernel struct {
	lengthscales    []float64
	outputscale     float64
	taskColumn      int
	taskCorrelation float64
}

func newKernel(hp Hyperparameters, taskColumn int) kernel {
	return kernel{
		lengthscales:    hp.Lengthscales,
		outputscale:     hp.Outputscale,
		taskColumn:      taskColumn,
		taskCorrelation: hp.TaskCorrelation,
	}
}

func (k kernel) eval(a, b []float64) float64 {
	var r2 float64
	l := 0
	for j := range a {
		if j == k.taskColumn {
			continue
		}
		d := (a[j] - b[j]) / k.lengthscales[l]
		r2 += d * d
		l++
	}
	r := math.Sqrt(r2)
	v := k.outputscale * (1 + sqrt5*r + 5*r2/3) * math.Exp(-sqrt5*r)
	if k.taskColumn >= 0 && math.Round(a[k.taskColumn]) != math.Round(b[k.taskColumn]) {
		v *= k.taskCorrelation
	}
	return v
}

// gram returns K(X, X) + noise·I.
func (k kernel) gram(X *mat.Dense, noise float64) *mat.SymDense {
	n, _ := X.Dims()
	K := mat.NewSymDense(n, nil)
	parallel.ParallelizeWithThreshold(n, 128, func(s, e int) {
		for i := s; i < e; i++ {
			xi := X.RawRowView(i)
			for j := i; j < n; j++ {
				v := k.eval(xi, X.RawRowView(j))
				if i == j {
					v += noise
				}
				K.SetSym(i, j, v)
			}
		}
	})
	return K
}

// cross returns K(A, B).
func (k kernel) cross(A, B *mat.Dense) *mat.Dense {
	m, _ := A.Dims()
	n, _ := B.Dims()
	K := mat.NewDense(m, n, nil)
	parallel.ParallelizeWithThreshold(m, 128, func(s, e int) {
		for i := s; i < e; i++ {
			ai := A.RawRowView(i)
			for j := 0; j < n; j++ {
				K.Set(i, j, k.eval(ai, B.RawRowView(j)))
			}
		}
	})
	return K
}
