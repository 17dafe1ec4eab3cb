// Package objective turns measured target values into the quantity a
// surrogate is trained on.
package objective

import (
	"fmt"
	"math"

	"github.com/ezoic/surrogo/pkg/errors"
)

// Mode is the optimization direction of a target.
type Mode string

const (
	ModeMax   Mode = "MAX"
	ModeMin   Mode = "MIN"
	ModeMatch Mode = "MATCH"
)

// Transformation maps a bounded target onto [0, 1].
type Transformation string

const (
	TransformLinear     Transformation = "LINEAR"
	TransformTriangular Transformation = "TRIANGULAR"
	TransformBell       Transformation = "BELL"
)

// Target is a measured quantity with a direction and optional bounds.
type Target struct {
	Name           string         `json:"name" yaml:"name"`
	Mode           Mode           `json:"mode" yaml:"mode"`
	Bounds         *[2]float64    `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Transformation Transformation `json:"transformation,omitempty" yaml:"transformation,omitempty"`
}

// NewTarget creates and validates a target. bounds may be nil. An empty
// transformation selects the default for the mode: LINEAR for MAX and MIN,
// BELL for MATCH.
func NewTarget(name string, mode Mode, bounds *[2]float64, transformation Transformation) (Target, error) {
	t := Target{Name: name, Mode: mode, Bounds: bounds, Transformation: transformation}
	if t.Transformation == "" && bounds != nil {
		t.Transformation = TransformLinear
		if mode == ModeMatch {
			t.Transformation = TransformBell
		}
	}
	return t, t.Validate()
}

// Validate checks the target definition.
func (t Target) Validate() error {
	if t.Name == "" {
		return errors.NewValidationError("name", "target name must not be empty", t.Name)
	}
	switch t.Mode {
	case ModeMax, ModeMin, ModeMatch:
	default:
		return errors.NewValidationError("mode", "unknown target mode", t.Mode)
	}
	if t.Bounds == nil {
		if t.Mode == ModeMatch {
			return errors.NewValidationError("bounds", "MATCH targets require bounds", t.Name)
		}
		if t.Transformation != "" {
			return errors.NewValidationError("transformation", "a transformation requires bounds", t.Transformation)
		}
		return nil
	}
	lo, hi := t.Bounds[0], t.Bounds[1]
	if !(lo < hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return errors.NewValidationError("bounds", fmt.Sprintf("need finite lower < upper, got [%g, %g]", lo, hi), t.Name)
	}
	switch t.Transformation {
	case TransformLinear:
		if t.Mode == ModeMatch {
			return errors.NewValidationError("transformation", "MATCH targets need BELL or TRIANGULAR", t.Transformation)
		}
	case TransformTriangular, TransformBell:
		if t.Mode != ModeMatch {
			return errors.NewValidationError("transformation", "only MATCH targets use "+string(t.Transformation), t.Transformation)
		}
	default:
		return errors.NewValidationError("transformation", "unknown transformation", t.Transformation)
	}
	return nil
}

// Bounded reports whether the target has bounds.
func (t Target) Bounded() bool { return t.Bounds != nil }

// Transform maps measured values to the computational representation.
//
// Without bounds MAX is the identity and MIN negates, so larger is always
// better. With bounds the result lies in [0, 1].
func (t Target) Transform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, x := range values {
		out[i] = t.transformOne(x)
	}
	return out
}

func (t Target) transformOne(x float64) float64 {
	if t.Bounds == nil {
		if t.Mode == ModeMin {
			return -x
		}
		return x
	}
	lo, hi := t.Bounds[0], t.Bounds[1]
	switch t.Mode {
	case ModeMax:
		return clip01((x - lo) / (hi - lo))
	case ModeMin:
		return clip01((hi - x) / (hi - lo))
	}
	mid, half := (lo+hi)/2, (hi-lo)/2
	if t.Transformation == TransformTriangular {
		return math.Max(0, 1-math.Abs(x-mid)/half)
	}
	d := (x - mid) / half
	return math.Exp(-d * d / 2)
}

func clip01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
