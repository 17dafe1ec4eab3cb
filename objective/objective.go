package objective

import (
	"fmt"
	"math"

	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/pkg/errors"
)

// DesirabilityColumn is the output column of a Desirability objective.
const DesirabilityColumn = "Desirability"

// Objective maps a measurements frame to the target frame a surrogate is fit on.
type Objective interface {
	Targets() []Target
	// Transform returns one column per model output with the row index of df.
	Transform(df *frame.Frame) (*frame.Frame, error)
}

// SingleTarget optimizes one target.
type SingleTarget struct {
	Target Target
}

// NewSingleTarget creates a single target objective.
func NewSingleTarget(t Target) (*SingleTarget, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &SingleTarget{Target: t}, nil
}

func (o *SingleTarget) Targets() []Target { return []Target{o.Target} }

func (o *SingleTarget) Transform(df *frame.Frame) (*frame.Frame, error) {
	y, err := targetValues(df, o.Target.Name)
	if err != nil {
		return nil, err
	}
	return column(o.Target.Name, o.Target.Transform(y), df.Index())
}

// Scalarizer combines normalized target values into one desirability.
type Scalarizer string

const (
	ScalarizerGeomMean Scalarizer = "GEOM_MEAN"
	ScalarizerMean     Scalarizer = "MEAN"
)

// Desirability combines several bounded targets into one column.
type Desirability struct {
	targets    []Target
	weights    []float64
	scalarizer Scalarizer
}

// NewDesirability creates a desirability objective. All targets need bounds.
// nil weights mean equal weights; weights are normalized to sum to one.
func NewDesirability(targets []Target, weights []float64, scalarizer Scalarizer) (*Desirability, error) {
	if len(targets) < 2 {
		return nil, errors.NewValidationError("targets", "desirability needs at least two targets", len(targets))
	}
	seen := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if !t.Bounded() {
			return nil, errors.NewValidationError("targets", "desirability targets must have bounds", t.Name)
		}
		if _, dup := seen[t.Name]; dup {
			return nil, errors.NewValidationError("targets", "duplicate target", t.Name)
		}
		seen[t.Name] = struct{}{}
	}
	if weights == nil {
		weights = make([]float64, len(targets))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(targets) {
		return nil, errors.NewDimensionError("NewDesirability", len(targets), len(weights), 0)
	}
	var total float64
	for _, w := range weights {
		if !(w > 0) {
			return nil, errors.NewValidationError("weights", "weights must be positive", w)
		}
		total += w
	}
	norm := make([]float64, len(weights))
	for i, w := range weights {
		norm[i] = w / total
	}
	switch scalarizer {
	case "":
		scalarizer = ScalarizerGeomMean
	case ScalarizerGeomMean, ScalarizerMean:
	default:
		return nil, errors.NewValidationError("scalarizer", "unknown scalarizer", scalarizer)
	}
	return &Desirability{targets: append([]Target(nil), targets...), weights: norm, scalarizer: scalarizer}, nil
}

func (o *Desirability) Targets() []Target { return append([]Target(nil), o.targets...) }

// Weights returns the normalized weights.
func (o *Desirability) Weights() []float64 { return append([]float64(nil), o.weights...) }

func (o *Desirability) Transform(df *frame.Frame) (*frame.Frame, error) {
	out := make([]float64, df.Len())
	if o.scalarizer == ScalarizerGeomMean {
		for i := range out {
			out[i] = 1
		}
	}
	for k, t := range o.targets {
		y, err := targetValues(df, t.Name)
		if err != nil {
			return nil, err
		}
		for i, v := range t.Transform(y) {
			if o.scalarizer == ScalarizerGeomMean {
				out[i] *= math.Pow(v, o.weights[k])
			} else {
				out[i] += o.weights[k] * v
			}
		}
	}
	return column(DesirabilityColumn, out, df.Index())
}

func targetValues(df *frame.Frame, name string) ([]float64, error) {
	y, err := df.Floats(name)
	if err != nil {
		return nil, errors.Wrapf(err, "target %q", name)
	}
	for i, v := range y {
		if math.IsNaN(v) {
			return nil, errors.NewValueError("Objective.Transform",
				fmt.Sprintf("target %q is missing in row %d", name, df.Index()[i]))
		}
	}
	return y, nil
}

func column(name string, values []float64, index []int) (*frame.Frame, error) {
	cells := make([]frame.Value, len(values))
	for i, v := range values {
		cells[i] = frame.Num(v)
	}
	f, err := frame.FromColumns([]string{name}, map[string][]frame.Value{name: cells})
	if err != nil {
		return nil, err
	}
	return f.WithIndex(index)
}
