package searchspace

import (
	"fmt"

	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/pkg/errors"
)

// Type classifies a search space by the kinds of parameters it holds.
type Type string

const (
	TypeDiscrete   Type = "DISCRETE"
	TypeContinuous Type = "CONTINUOUS"
	TypeHybrid     Type = "HYBRID"
	TypeEmpty      Type = "EMPTY"
)

// Subspace is the discrete or continuous part of a SearchSpace.
type Subspace struct {
	parameters []Parameter
}

// Parameters returns the parameters of the subspace in order.
func (s Subspace) Parameters() []Parameter { return append([]Parameter(nil), s.parameters...) }

// IsEmpty reports whether the subspace has no parameters.
func (s Subspace) IsEmpty() bool { return len(s.parameters) == 0 }

// SearchSpace is an ordered, validated set of parameters. It is read-only
// after construction.
type SearchSpace struct {
	parameters []Parameter
	byName     map[string]Parameter
}

// New validates the parameters and builds a search space.
//
// Names must be unique, computational columns must not collide and at most
// one task parameter is allowed.
func New(parameters ...Parameter) (*SearchSpace, error) {
	s := &SearchSpace{byName: make(map[string]Parameter, len(parameters))}
	columns := make(map[string]string)
	tasks := 0
	for _, p := range parameters {
		if p == nil {
			return nil, errors.NewValidationError("parameters", "nil parameter", nil)
		}
		if _, dup := s.byName[p.Name()]; dup {
			return nil, errors.NewValidationError("parameters", "duplicate parameter name", p.Name())
		}
		for _, c := range p.CompRepColumns() {
			if owner, dup := columns[c]; dup {
				return nil, errors.NewValidationError("parameters",
					fmt.Sprintf("computational column %q produced by both %q and %q", c, owner, p.Name()), c)
			}
			columns[c] = p.Name()
		}
		if p.IsTask() {
			tasks++
		}
		s.byName[p.Name()] = p
		s.parameters = append(s.parameters, p)
	}
	if tasks > 1 {
		return nil, errors.NewValidationError("parameters", "at most one task parameter is supported", tasks)
	}
	return s, nil
}

// Parameters returns the parameters in declaration order.
func (s *SearchSpace) Parameters() []Parameter { return append([]Parameter(nil), s.parameters...) }

// Parameter returns the parameter with the given experimental name.
func (s *SearchSpace) Parameter(name string) (Parameter, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// ParameterNames returns the experimental column names in order.
func (s *SearchSpace) ParameterNames() []string {
	names := make([]string, len(s.parameters))
	for i, p := range s.parameters {
		names[i] = p.Name()
	}
	return names
}

// CompRepColumns returns all computational columns in parameter order.
func (s *SearchSpace) CompRepColumns() []string {
	var cols []string
	for _, p := range s.parameters {
		cols = append(cols, p.CompRepColumns()...)
	}
	return cols
}

// CompRepBounds returns a two-row frame over CompRepColumns: row 0 holds the
// lower bounds and row 1 the upper bounds.
func (s *SearchSpace) CompRepBounds() (*frame.Frame, error) {
	cols := s.CompRepColumns()
	lower := make([]float64, 0, len(cols))
	upper := make([]float64, 0, len(cols))
	for _, p := range s.parameters {
		lo, hi := p.Bounds()
		lower = append(lower, lo...)
		upper = append(upper, hi...)
	}
	return frame.NewNumeric(cols, [][]float64{lower, upper})
}

// NTasks returns the number of tasks encoded by the task parameter, or 1 when
// the space has none.
func (s *SearchSpace) NTasks() int {
	for _, p := range s.parameters {
		if t, ok := p.(*Task); ok {
			return len(t.labels)
		}
	}
	return 1
}

// TaskParameter returns the task parameter if the space has one.
func (s *SearchSpace) TaskParameter() (*Task, bool) {
	for _, p := range s.parameters {
		if t, ok := p.(*Task); ok {
			return t, true
		}
	}
	return nil, false
}

// Continuous returns the continuous subspace.
func (s *SearchSpace) Continuous() Subspace {
	var out Subspace
	for _, p := range s.parameters {
		if p.IsContinuous() {
			out.parameters = append(out.parameters, p)
		}
	}
	return out
}

// Discrete returns the discrete subspace.
func (s *SearchSpace) Discrete() Subspace {
	var out Subspace
	for _, p := range s.parameters {
		if !p.IsContinuous() {
			out.parameters = append(out.parameters, p)
		}
	}
	return out
}

// Type classifies the space.
func (s *SearchSpace) Type() Type {
	d, c := !s.Discrete().IsEmpty(), !s.Continuous().IsEmpty()
	switch {
	case d && c:
		return TypeHybrid
	case c:
		return TypeContinuous
	case d:
		return TypeDiscrete
	default:
		return TypeEmpty
	}
}

// Transform maps an experimental frame to its computational representation.
//
// Every parameter must have a column in df; missing cells become NaN.
// Columns that are not parameters are an error unless allowExtra is set, in
// which case they are dropped. The row index of df is preserved.
func (s *SearchSpace) Transform(df *frame.Frame, allowExtra bool) (_ *frame.Frame, err error) {
	defer errors.Recover(&err, "SearchSpace.Transform")
	for _, c := range df.Columns() {
		if _, ok := s.byName[c]; !ok && !allowExtra {
			return nil, errors.NewValueError("SearchSpace.Transform",
				fmt.Sprintf("column %q is not a parameter of the search space", c))
		}
	}

	cols := s.CompRepColumns()
	values := make(map[string][]frame.Value, len(cols))
	for _, c := range cols {
		values[c] = make([]frame.Value, df.Len())
	}
	index := df.Index()
	for _, p := range s.parameters {
		raw, err := df.Column(p.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %q missing from input", p.Name())
		}
		pcols := p.CompRepColumns()
		for i, v := range raw {
			enc, err := p.Encode(v)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d", index[i])
			}
			for j, c := range pcols {
				values[c][i] = frame.Num(enc[j])
			}
		}
	}

	out, err := frame.FromColumns(cols, values)
	if err != nil {
		return nil, err
	}
	return out.WithIndex(index)
}
