package surrogates

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/ezoic/surrogo/objective"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/preprocessing"
	"github.com/ezoic/surrogo/searchspace"
)

const (
	minNoise     = 1e-6
	logParamClip = 12.0
	penalty      = 1e10

	// stallGradient bounds the gradient norm at which a failed line search
	// counts as having reached the optimum.
	stallGradient = 1e-2
)

// Gamma(shape, rate) hyperpriors on the kernel and noise parameters.
var (
	lengthscalePrior = gammaPrior{shape: 3, rate: 6}
	outputscalePrior = gammaPrior{shape: 2, rate: 0.15}
	noisePrior       = gammaPrior{shape: 1.1, rate: 0.05}
)

type gammaPrior struct{ shape, rate float64 }

// logDensity is the unnormalized log density at v > 0.
func (g gammaPrior) logDensity(v float64) float64 {
	return (g.shape-1)*math.Log(v) - g.rate*v
}

// gpContext locates the task column in the computational representation.
type gpContext struct {
	taskColumn int
	nTasks     int
}

// GaussianProcessSurrogate is a Gaussian process with a Matérn 5/2 kernel.
// Hyperparameters are the maximum a posteriori estimate under Gamma priors,
// found with L-BFGS on the log marginal likelihood. With a task parameter
// the kernel is multiplied by a learned correlation between tasks, which
// transfers information across them.
type GaussianProcessSurrogate struct {
	Base

	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	model *gpModel
}

type gpModel struct {
	hp     Hyperparameters
	kernel kernel
	x      *mat.Dense
	chol   *mat.Cholesky
	alpha  *mat.VecDense
	nTasks int
}

// NewGaussianProcessSurrogate creates an untrained Gaussian process.
func NewGaussianProcessSurrogate() *GaussianProcessSurrogate {
	s := &GaussianProcessSurrogate{MaxIterations: 200}
	s.Base = newBase(s)
	return s
}

func (s *GaussianProcessSurrogate) Kind() Kind          { return KindGaussianProcess }
func (s *GaussianProcessSurrogate) Family() ModelFamily { return FamilyGaussianProcess }

func (s *GaussianProcessSurrogate) Capabilities() Capabilities {
	return Capabilities{JointPosterior: true, SupportsTransferLearning: true}
}

// ParameterScaler leaves task indices unscaled so the kernel can compare them.
func (s *GaussianProcessSurrogate) ParameterScaler(p searchspace.Parameter) preprocessing.ColumnScaler {
	if p.IsTask() {
		return nil
	}
	return DefaultParameterScaler(p)
}

// ModelContext records where the task column sits.
func (s *GaussianProcessSurrogate) ModelContext(space *searchspace.SearchSpace, _ objective.Objective) (ModelContext, error) {
	ctx := gpContext{taskColumn: -1, nTasks: space.NTasks()}
	task, ok := space.TaskParameter()
	if !ok {
		return ctx, nil
	}
	for i, c := range space.CompRepColumns() {
		if c == task.Name() {
			ctx.taskColumn = i
		}
	}
	return ctx, nil
}

// Hyperparameters returns the fitted hyperparameters.
func (s *GaussianProcessSurrogate) Hyperparameters() (Hyperparameters, bool) {
	if s.model == nil {
		return Hyperparameters{}, false
	}
	return s.model.hp, true
}

// hyperVector maps between the unconstrained optimization vector and
// Hyperparameters. Layout: log lengthscales, log outputscale,
// log(noise - minNoise), mean, logit task correlation (task only).
type hyperVector struct {
	nLength int
	task    bool
}

func (h hyperVector) size() int {
	n := h.nLength + 3
	if h.task {
		n++
	}
	return n
}

func (h hyperVector) initial() []float64 {
	theta := make([]float64, h.size())
	for i := 0; i < h.nLength; i++ {
		theta[i] = math.Log(0.5)
	}
	theta[h.nLength] = math.Log(1)
	theta[h.nLength+1] = math.Log(1e-2)
	theta[h.nLength+2] = 0
	if h.task {
		theta[h.nLength+3] = 0
	}
	return theta
}

func clipExp(v float64) float64 {
	return math.Exp(math.Max(-logParamClip, math.Min(logParamClip, v)))
}

func (h hyperVector) decode(theta []float64) Hyperparameters {
	hp := Hyperparameters{Lengthscales: make([]float64, h.nLength)}
	for i := range hp.Lengthscales {
		hp.Lengthscales[i] = clipExp(theta[i])
	}
	hp.Outputscale = clipExp(theta[h.nLength])
	hp.Noise = minNoise + clipExp(theta[h.nLength+1])
	hp.Mean = theta[h.nLength+2]
	if h.task {
		hp.TaskCorrelation = 1 / (1 + 1/clipExp(theta[h.nLength+3]))
	}
	return hp
}

func logPrior(hp Hyperparameters) float64 {
	lp := outputscalePrior.logDensity(hp.Outputscale) + noisePrior.logDensity(hp.Noise)
	for _, l := range hp.Lengthscales {
		lp += lengthscalePrior.logDensity(l)
	}
	return lp
}

// factorize returns the Cholesky factor of K, adding diagonal jitter if K is
// numerically not positive definite.
func factorize(K *mat.SymDense) (*mat.Cholesky, bool) {
	var chol mat.Cholesky
	if chol.Factorize(K) {
		return &chol, true
	}
	n := K.SymmetricDim()
	jittered := mat.NewSymDense(n, nil)
	for jitter := 1e-8; jitter <= 1e-4; jitter *= 10 {
		jittered.CopySym(K)
		for i := 0; i < n; i++ {
			jittered.SetSym(i, i, K.At(i, i)+jitter)
		}
		if chol.Factorize(jittered) {
			return &chol, true
		}
	}
	return nil, false
}

// negLogPosterior is the negative log marginal likelihood minus the log
// prior, per training point.
func negLogPosterior(hp Hyperparameters, taskColumn int, x *mat.Dense, y []float64) float64 {
	n := len(y)
	chol, ok := factorize(newKernel(hp, taskColumn).gram(x, hp.Noise))
	if !ok {
		return math.Inf(1)
	}
	r := mat.NewVecDense(n, nil)
	for i, v := range y {
		r.SetVec(i, v-hp.Mean)
	}
	var alpha mat.VecDense
	if err := chol.SolveVecTo(&alpha, r); err != nil {
		return math.Inf(1)
	}
	nlml := 0.5*mat.Dot(r, &alpha) + 0.5*chol.LogDet() + 0.5*float64(n)*math.Log(2*math.Pi)
	return (nlml - logPrior(hp)) / float64(n)
}

// convergenceWarning classifies the end of a hyperparameter search. Finite
// difference gradients are noisy close to the optimum, so a line search that
// fails after improving on f0 with a flat gradient is a normal stop.
func convergenceWarning(result *optimize.Result, err error, f0 float64, fn func([]float64) float64) *errors.ConvergenceWarning {
	const algorithm = "GaussianProcessSurrogate"
	if result == nil {
		if err == nil {
			return nil
		}
		return errors.NewConvergenceWarning(algorithm, 0, fmt.Sprintf("hyperparameter optimization failed: %v", err))
	}
	iters := result.Stats.MajorIterations
	switch {
	case result.Status == optimize.IterationLimit:
		return errors.NewConvergenceWarning(algorithm, iters, "hyperparameter optimization reached the iteration limit")
	case err == nil:
		return nil
	case result.F <= f0 && result.F < penalty && len(result.X) > 0 && gradientNorm(fn, result.X) < stallGradient:
		return nil
	default:
		return errors.NewConvergenceWarning(algorithm, iters, fmt.Sprintf("hyperparameter optimization stopped early: %v", err))
	}
}

// gradientNorm is the largest absolute central difference derivative of fn
// at x.
func gradientNorm(fn func([]float64) float64, x []float64) float64 {
	grad := fd.Gradient(nil, fn, x, &fd.Settings{Formula: fd.Central, Step: 1e-5})
	return floats.Norm(grad, math.Inf(1))
}

func (s *GaussianProcessSurrogate) fitModel(x, y *mat.Dense, ctx ModelContext) error {
	gctx, ok := ctx.(gpContext)
	if !ok {
		gctx = gpContext{taskColumn: -1, nTasks: 1}
	}
	n, d := x.Dims()
	if n == 0 {
		return errors.NewModelError("GaussianProcessSurrogate.Fit", "no training data", errors.ErrEmptyData)
	}
	yv := mat.Col(nil, 0, y)

	hv := hyperVector{nLength: d, task: gctx.taskColumn >= 0}
	if hv.task {
		hv.nLength--
	}

	objectiveFn := func(theta []float64) float64 {
		f := negLogPosterior(hv.decode(theta), gctx.taskColumn, x, yv)
		if math.IsInf(f, 1) || math.IsNaN(f) {
			return penalty
		}
		return f
	}
	problem := optimize.Problem{
		Func: objectiveFn,
		Grad: func(grad, theta []float64) {
			fd.Gradient(grad, objectiveFn, theta, &fd.Settings{Formula: fd.Central, Step: 1e-5})
		},
	}
	settings := &optimize.Settings{
		MajorIterations: s.MaxIterations,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-8, Relative: 1e-8, Iterations: 20},
	}

	theta := hv.initial()
	f0 := objectiveFn(theta)
	result, err := optimize.Minimize(problem, theta, settings, &optimize.LBFGS{})
	if w := convergenceWarning(result, err, f0, objectiveFn); w != nil {
		errors.Warn(w)
	}
	if result != nil && len(result.X) == len(theta) && result.F < f0 {
		theta = result.X
	}

	hp := hv.decode(theta)
	k := newKernel(hp, gctx.taskColumn)
	chol, ok := factorize(k.gram(x, hp.Noise))
	if !ok {
		return errors.NewModelError("GaussianProcessSurrogate.Fit",
			"kernel matrix is not positive definite", errors.ErrSingularMatrix)
	}
	r := mat.NewVecDense(n, nil)
	for i, v := range yv {
		r.SetVec(i, v-hp.Mean)
	}
	alpha := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(alpha, r); err != nil {
		return errors.NewModelError("GaussianProcessSurrogate.Fit", "solving for the weights", err)
	}

	s.model = &gpModel{
		hp:     hp,
		kernel: k,
		x:      mat.DenseCopyOf(x),
		chol:   chol,
		alpha:  alpha,
		nTasks: gctx.nTasks,
	}
	return nil
}

// estimateMoments returns the latent posterior mean and the full covariance
// over the candidates.
func (s *GaussianProcessSurrogate) estimateMoments(x *mat.Dense) (*Moments, error) {
	m := s.model
	n, c := x.Dims()
	if _, d := m.x.Dims(); c != d {
		return nil, errors.NewDimensionError("GaussianProcessSurrogate.Posterior", d, c, 1)
	}
	Ks := m.kernel.cross(x, m.x)

	mean := mat.NewVecDense(n, nil)
	mean.MulVec(Ks, m.alpha)
	for i := 0; i < n; i++ {
		mean.SetVec(i, mean.AtVec(i)+m.hp.Mean)
	}

	var W mat.Dense
	if err := m.chol.SolveTo(&W, Ks.T()); err != nil {
		return nil, errors.NewModelError("GaussianProcessSurrogate.Posterior", "solving for the covariance", err)
	}
	var reduction mat.Dense
	reduction.Mul(Ks, &W)

	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		xi := x.RawRowView(i)
		for j := i; j < n; j++ {
			v := m.kernel.eval(xi, x.RawRowView(j)) - 0.5*(reduction.At(i, j)+reduction.At(j, i))
			if i == j {
				v = math.Max(v, 1e-12)
			}
			cov.SetSym(i, j, v)
		}
	}
	return &Moments{Mean: mean, Covariance: cov}, nil
}
