package main

import (
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/surrogo/config"
	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/objective"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/searchspace"
	"github.com/ezoic/surrogo/surrogates"
)

const gridSize = 100

// testFunction maps a point of [lower, upper] to a target value.
type testFunction func(x, lower, upper, amplitude, bias float64) float64

var testFunctions = map[string]testFunction{
	"sine": func(x, lower, upper, amplitude, bias float64) float64 {
		return amplitude*math.Sin((x-lower)/(upper-lower)*2*math.Pi) + bias
	},
	"constant": func(_, _, _, _, bias float64) float64 {
		return bias
	},
	"linear": func(x, lower, upper, amplitude, bias float64) float64 {
		return amplitude*(x-lower)/(upper-lower) + bias
	},
	"cubic": func(x, lower, upper, amplitude, bias float64) float64 {
		return amplitude*math.Pow((x-lower)/(upper-lower), 3) + bias
	},
}

func functionNames() []string {
	names := make([]string, 0, len(testFunctions))
	for n := range testFunctions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type plotOptions struct {
	function  string
	kind      string
	points    int
	seed      uint64
	lower     float64
	upper     float64
	amplitude float64
	bias      float64
	out       string
}

// simulation is a surrogate fitted to a few noiseless samples of a test
// function, evaluated on a regular grid.
type simulation struct {
	grid, truth   []float64
	trainX        []float64
	trainY        []float64
	mean, stddev  []float64
	kind          surrogates.Kind
	functionLabel string
}

func newPlotCmd(_ *rootOptions) *cobra.Command {
	opts := plotOptions{}
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Fit a surrogate to samples of a 1-D test function and plot its posterior",
		Long: `Samples a few points of a test function, fits the surrogate and renders the
posterior mean with a one standard deviation band. Apart from the axis labels
the picture should not change when the parameter limits, amplitude or bias
are changed, because inputs and outputs are scaled before fitting.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sim, err := simulate(opts)
			if err != nil {
				return err
			}
			if err := render(sim, opts.out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.function, "function", "sine", "test function ("+strings.Join(functionNames(), ", ")+")")
	f.StringVar(&opts.kind, "surrogate", string(surrogates.KindGaussianProcess), "surrogate kind")
	f.IntVar(&opts.points, "points", 5, "number of training points")
	f.Uint64Var(&opts.seed, "seed", 1337, "random seed for the training points")
	f.Float64Var(&opts.lower, "lower", 0, "lower parameter limit")
	f.Float64Var(&opts.upper, "upper", 1, "upper parameter limit")
	f.Float64Var(&opts.amplitude, "amplitude", 1, "function amplitude")
	f.Float64Var(&opts.bias, "bias", 0, "function bias")
	f.StringVarP(&opts.out, "out", "o", "posterior.png", "output image")
	return cmd
}

func simulate(opts plotOptions) (*simulation, error) {
	fn, ok := testFunctions[opts.function]
	if !ok {
		return nil, errors.NewValueError("plot", "unknown test function "+opts.function)
	}
	if !(opts.upper > opts.lower) {
		return nil, errors.NewValueError("plot", "upper limit must exceed lower limit")
	}
	if opts.points < 1 || opts.points > gridSize {
		return nil, errors.NewValueError("plot", fmt.Sprintf("points must be in [1, %d]", gridSize))
	}

	grid := floats.Span(make([]float64, gridSize), opts.lower, opts.upper)
	truth := make([]float64, gridSize)
	for i, x := range grid {
		truth[i] = fn(x, opts.lower, opts.upper, opts.amplitude, opts.bias)
	}

	param, err := searchspace.NewNumericalDiscrete("param", grid...)
	if err != nil {
		return nil, err
	}
	space, err := searchspace.New(param)
	if err != nil {
		return nil, err
	}
	obj, err := objective.NewSingleTarget(objective.Target{Name: "target", Mode: objective.ModeMax})
	if err != nil {
		return nil, err
	}
	sc := config.DefaultConfig().Surrogate
	sc.Kind = opts.kind
	s, err := config.NewSurrogate(sc)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed))
	idx := rng.Perm(gridSize)[:opts.points]
	sim := &simulation{grid: grid, truth: truth, kind: s.Kind(), functionLabel: opts.function}
	rows := make([][]float64, len(idx))
	for k, i := range idx {
		rows[k] = []float64{grid[i], truth[i]}
		sim.trainX = append(sim.trainX, grid[i])
		sim.trainY = append(sim.trainY, truth[i])
	}
	train, err := frame.NewNumeric([]string{"param", "target"}, rows)
	if err != nil {
		return nil, err
	}
	if err := s.Fit(space, obj, train); err != nil {
		return nil, err
	}

	candidates := make([][]float64, gridSize)
	for i, x := range grid {
		candidates[i] = []float64{x}
	}
	cand, err := frame.NewNumeric([]string{"param"}, candidates)
	if err != nil {
		return nil, err
	}
	post, err := s.Posterior(cand)
	if err != nil {
		return nil, err
	}
	sim.mean = append([]float64(nil), post.Mean.RawVector().Data...)
	sim.stddev = post.Stddev()
	return sim, nil
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}

func render(sim *simulation, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s on %s", sim.kind, sim.functionLabel)
	p.X.Label.Text = "param"
	p.Y.Label.Text = "target"

	red := color.RGBA{R: 214, G: 39, B: 40, A: 255}
	blue := color.RGBA{R: 31, G: 119, B: 180, A: 255}

	n := len(sim.grid)
	band := make(plotter.XYs, 0, 2*n)
	for i := 0; i < n; i++ {
		band = append(band, plotter.XY{X: sim.grid[i], Y: sim.mean[i] + sim.stddev[i]})
	}
	for i := n - 1; i >= 0; i-- {
		band = append(band, plotter.XY{X: sim.grid[i], Y: sim.mean[i] - sim.stddev[i]})
	}
	poly, err := plotter.NewPolygon(band)
	if err != nil {
		return err
	}
	poly.Color = color.RGBA{R: 214, G: 39, B: 40, A: 50}
	poly.LineStyle.Width = 0

	truth, err := plotter.NewLine(xys(sim.grid, sim.truth))
	if err != nil {
		return err
	}
	truth.Color = blue

	mean, err := plotter.NewLine(xys(sim.grid, sim.mean))
	if err != nil {
		return err
	}
	mean.Color = red
	mean.Width = vg.Points(2)

	train, err := plotter.NewScatter(xys(sim.trainX, sim.trainY))
	if err != nil {
		return err
	}
	train.Color = blue

	p.Add(poly, truth, mean, train)
	p.Legend.Add("Test function", truth)
	p.Legend.Add("Surrogate model", mean)
	p.Legend.Add("Training points", train)
	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}
