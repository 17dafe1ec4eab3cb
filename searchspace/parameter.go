// Package searchspace describes the parameters of an experiment and how their
// experimental values map to the numeric columns models consume.
//
// Each Parameter owns one or more computational columns and declares bounds
// for them. A SearchSpace is an ordered set of parameters; it provides the
// composite bounds table used to fit input scalers and the transform from an
// experimental frame to a computational frame.
package searchspace

import (
	"fmt"
	"math"
	"sort"

	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/preprocessing"
)

// Parameter is one experimental input.
type Parameter interface {
	// Name is the experimental column name.
	Name() string
	// CompRepColumns are the computational columns the parameter produces.
	CompRepColumns() []string
	// Bounds returns lower and upper bounds per computational column.
	Bounds() (lower, upper []float64)
	IsContinuous() bool
	IsTask() bool
	// Encode maps one experimental value to its computational values. Missing
	// values map to NaN in every column.
	Encode(v frame.Value) ([]float64, error)
}

func nanRow(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func checkName(name string) error {
	if name == "" {
		return errors.NewValidationError("name", "parameter name must not be empty", name)
	}
	return nil
}

// NumericalDiscrete is a numeric parameter restricted to a finite set of values.
type NumericalDiscrete struct {
	name   string
	values []float64
}

// NewNumericalDiscrete creates a discrete numeric parameter. Values are
// deduplicated and sorted.
func NewNumericalDiscrete(name string, values ...float64) (*NumericalDiscrete, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.NewValidationError("values", "at least one value is required", name)
	}
	seen := make(map[float64]struct{}, len(values))
	var uniq []float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.NewValidationError("values", "values must be finite", v)
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			uniq = append(uniq, v)
		}
	}
	sort.Float64s(uniq)
	return &NumericalDiscrete{name: name, values: uniq}, nil
}

func (p *NumericalDiscrete) Name() string             { return p.name }
func (p *NumericalDiscrete) CompRepColumns() []string { return []string{p.name} }
func (p *NumericalDiscrete) IsContinuous() bool       { return false }
func (p *NumericalDiscrete) IsTask() bool             { return false }

// Values returns the allowed values in increasing order.
func (p *NumericalDiscrete) Values() []float64 { return append([]float64(nil), p.values...) }

func (p *NumericalDiscrete) Bounds() (lower, upper []float64) {
	return []float64{p.values[0]}, []float64{p.values[len(p.values)-1]}
}

func (p *NumericalDiscrete) Encode(v frame.Value) ([]float64, error) {
	return encodeNumber(p.name, v)
}

// NumericalContinuous is a numeric parameter on a closed interval.
type NumericalContinuous struct {
	name         string
	lower, upper float64
}

// NewNumericalContinuous creates a continuous parameter on [lower, upper].
func NewNumericalContinuous(name string, lower, upper float64) (*NumericalContinuous, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if !(lower < upper) || math.IsInf(lower, 0) || math.IsInf(upper, 0) {
		return nil, errors.NewValidationError("bounds",
			fmt.Sprintf("need finite lower < upper, got [%g, %g]", lower, upper), name)
	}
	return &NumericalContinuous{name: name, lower: lower, upper: upper}, nil
}

func (p *NumericalContinuous) Name() string             { return p.name }
func (p *NumericalContinuous) CompRepColumns() []string { return []string{p.name} }
func (p *NumericalContinuous) IsContinuous() bool       { return true }
func (p *NumericalContinuous) IsTask() bool             { return false }

func (p *NumericalContinuous) Bounds() (lower, upper []float64) {
	return []float64{p.lower}, []float64{p.upper}
}

func (p *NumericalContinuous) Encode(v frame.Value) ([]float64, error) {
	return encodeNumber(p.name, v)
}

func encodeNumber(name string, v frame.Value) ([]float64, error) {
	x, ok := v.Float()
	if !ok {
		return nil, errors.NewValueError("searchspace.Encode",
			fmt.Sprintf("parameter %q expects a number, got %q", name, v.String()))
	}
	return []float64{x}, nil
}

// CategoricalEncoding selects the computational representation of a
// categorical parameter.
type CategoricalEncoding string

const (
	// EncodingOHE produces one 0/1 column per label.
	EncodingOHE CategoricalEncoding = "OHE"
	// EncodingINT produces a single column holding the label position.
	EncodingINT CategoricalEncoding = "INT"
)

// Categorical is a parameter over a finite set of labels.
type Categorical struct {
	name     string
	labels   []string
	encoding CategoricalEncoding
	encoder  *preprocessing.OneHotEncoder
}

// NewCategorical creates a categorical parameter. Label order is preserved
// and defines the column order of the one-hot encoding.
func NewCategorical(name string, labels []string, encoding CategoricalEncoding) (*Categorical, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, errors.NewValidationError("values", "at least one label is required", name)
	}
	switch encoding {
	case "":
		encoding = EncodingOHE
	case EncodingOHE, EncodingINT:
	default:
		return nil, errors.NewValidationError("encoding", "unknown categorical encoding", encoding)
	}
	enc, err := preprocessing.NewOneHotEncoderWithCategories(labels)
	if err != nil {
		return nil, errors.Wrapf(err, "parameter %q", name)
	}
	return &Categorical{name: name, labels: append([]string(nil), labels...), encoding: encoding, encoder: enc}, nil
}

func (p *Categorical) Name() string       { return p.name }
func (p *Categorical) IsContinuous() bool { return false }
func (p *Categorical) IsTask() bool       { return false }

// Labels returns the labels in declaration order.
func (p *Categorical) Labels() []string { return append([]string(nil), p.labels...) }

// Encoding returns the computational encoding.
func (p *Categorical) Encoding() CategoricalEncoding { return p.encoding }

func (p *Categorical) CompRepColumns() []string {
	if p.encoding == EncodingINT {
		return []string{p.name}
	}
	return p.encoder.GetFeatureNamesOut([]string{p.name})
}

func (p *Categorical) Bounds() (lower, upper []float64) {
	if p.encoding == EncodingINT {
		return []float64{0}, []float64{float64(len(p.labels) - 1)}
	}
	n := len(p.labels)
	lower, upper = make([]float64, n), make([]float64, n)
	for i := range upper {
		upper[i] = 1
	}
	return lower, upper
}

func (p *Categorical) Encode(v frame.Value) ([]float64, error) {
	width := len(p.CompRepColumns())
	if v.IsMissing() {
		return nanRow(width), nil
	}
	label, ok := v.Text()
	if !ok {
		label = v.String()
	}
	idx, known := p.encoder.CategoryToIdx[0][label]
	if !known {
		return nil, errors.NewValueError("searchspace.Encode",
			fmt.Sprintf("parameter %q has no label %q", p.name, label))
	}
	if p.encoding == EncodingINT {
		return []float64{float64(idx)}, nil
	}
	m, err := p.encoder.Transform([][]string{{label}})
	if err != nil {
		return nil, err
	}
	out := make([]float64, width)
	for j := range out {
		out[j] = m.At(0, j)
	}
	return out, nil
}

// Task marks the task a measurement belongs to in transfer learning. Its
// computational value is the integer position of the task label.
type Task struct {
	name   string
	labels []string
	active []string
}

// NewTask creates a task parameter. Active labels default to all labels.
func NewTask(name string, labels, active []string) (*Task, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, errors.NewValidationError("values", "at least one task is required", name)
	}
	known := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, dup := known[l]; dup {
			return nil, errors.NewValidationError("values", "duplicate task label", l)
		}
		known[l] = struct{}{}
	}
	for _, a := range active {
		if _, ok := known[a]; !ok {
			return nil, errors.NewValidationError("active_values", "active task is not a task label", a)
		}
	}
	if len(active) == 0 {
		active = labels
	}
	return &Task{name: name, labels: append([]string(nil), labels...), active: append([]string(nil), active...)}, nil
}

func (p *Task) Name() string             { return p.name }
func (p *Task) CompRepColumns() []string { return []string{p.name} }
func (p *Task) IsContinuous() bool       { return false }
func (p *Task) IsTask() bool             { return true }

// Labels returns all task labels.
func (p *Task) Labels() []string { return append([]string(nil), p.labels...) }

// ActiveLabels returns the tasks recommendations are made for.
func (p *Task) ActiveLabels() []string { return append([]string(nil), p.active...) }

func (p *Task) Bounds() (lower, upper []float64) {
	return []float64{0}, []float64{float64(len(p.labels) - 1)}
}

func (p *Task) Encode(v frame.Value) ([]float64, error) {
	if v.IsMissing() {
		return nanRow(1), nil
	}
	label, ok := v.Text()
	if !ok {
		label = v.String()
	}
	for i, l := range p.labels {
		if l == label {
			return []float64{float64(i)}, nil
		}
	}
	return nil, errors.NewValueError("searchspace.Encode",
		fmt.Sprintf("task parameter %q has no task %q", p.name, label))
}
