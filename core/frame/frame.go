// Package frame provides a small labeled table used to move experimental data
// between the search space, the objective and the surrogates.
//
// A Frame has an ordered list of column names, an integer row index and one
// slice of Values per column. Cells can be numbers, labels or missing, which
// covers both representations used in surrogo:
//
//   - experimental representation: human meaningful values such as category
//     labels and physical units
//   - computational representation: purely numeric columns ready for a model
//
// Frames are immutable from the outside; every operation returns a new Frame.
package frame

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/pkg/errors"
)

// Frame is a column oriented table with a row index.
type Frame struct {
	columns []string
	index   []int
	data    map[string][]Value
}

// New builds a frame from row-major cells. The index defaults to 0..n-1.
func New(columns []string, rows [][]Value) (*Frame, error) {
	if err := checkUnique(columns); err != nil {
		return nil, err
	}
	f := &Frame{
		columns: append([]string(nil), columns...),
		index:   defaultIndex(len(rows)),
		data:    make(map[string][]Value, len(columns)),
	}
	for _, c := range columns {
		f.data[c] = make([]Value, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, errors.NewDimensionError("frame.New", len(columns), len(row), 1)
		}
		for j, c := range columns {
			f.data[c][i] = row[j]
		}
	}
	return f, nil
}

// NewNumeric builds a frame from row-major floats.
func NewNumeric(columns []string, rows [][]float64) (*Frame, error) {
	cells := make([][]Value, len(rows))
	for i, row := range rows {
		cells[i] = make([]Value, len(row))
		for j, x := range row {
			cells[i][j] = Num(x)
		}
	}
	return New(columns, cells)
}

// FromColumns builds a frame from named columns of equal length.
func FromColumns(columns []string, values map[string][]Value) (*Frame, error) {
	if err := checkUnique(columns); err != nil {
		return nil, err
	}
	n := -1
	f := &Frame{columns: append([]string(nil), columns...), data: make(map[string][]Value, len(columns))}
	for _, c := range columns {
		col, ok := values[c]
		if !ok {
			return nil, errors.NewValueError("frame.FromColumns", fmt.Sprintf("missing values for column %q", c))
		}
		if n >= 0 && len(col) != n {
			return nil, errors.NewDimensionError("frame.FromColumns", n, len(col), 0)
		}
		n = len(col)
		f.data[c] = append([]Value(nil), col...)
	}
	if n < 0 {
		n = 0
	}
	f.index = defaultIndex(n)
	return f, nil
}

// FromMatrix wraps a numeric matrix. A nil index defaults to 0..r-1.
func FromMatrix(m mat.Matrix, columns []string, index []int) (*Frame, error) {
	r, c := m.Dims()
	if c != len(columns) {
		return nil, errors.NewDimensionError("frame.FromMatrix", len(columns), c, 1)
	}
	if index == nil {
		index = defaultIndex(r)
	}
	if len(index) != r {
		return nil, errors.NewDimensionError("frame.FromMatrix", r, len(index), 0)
	}
	if err := checkUnique(columns); err != nil {
		return nil, err
	}
	f := &Frame{
		columns: append([]string(nil), columns...),
		index:   append([]int(nil), index...),
		data:    make(map[string][]Value, c),
	}
	for j, name := range columns {
		col := make([]Value, r)
		for i := 0; i < r; i++ {
			col[i] = Num(m.At(i, j))
		}
		f.data[name] = col
	}
	return f, nil
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Index returns the row labels.
func (f *Frame) Index() []int {
	return append([]int(nil), f.index...)
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.index)
}

// Has reports whether the frame contains the column.
func (f *Frame) Has(column string) bool {
	_, ok := f.data[column]
	return ok
}

// Column returns a copy of the named column.
func (f *Frame) Column(column string) ([]Value, error) {
	col, ok := f.data[column]
	if !ok {
		return nil, errors.NewValueError("Frame.Column", fmt.Sprintf("unknown column %q", column))
	}
	return append([]Value(nil), col...), nil
}

// Floats returns the named column as floats. Missing cells become NaN, label
// cells are an error.
func (f *Frame) Floats(column string) ([]float64, error) {
	col, ok := f.data[column]
	if !ok {
		return nil, errors.NewValueError("Frame.Floats", fmt.Sprintf("unknown column %q", column))
	}
	out := make([]float64, len(col))
	for i, v := range col {
		x, ok := v.Float()
		if !ok {
			return nil, errors.NewValueError("Frame.Floats",
				fmt.Sprintf("column %q row %d holds non-numeric value %q", column, f.index[i], v.String()))
		}
		out[i] = x
	}
	return out, nil
}

// At returns the cell at row position i of the named column.
func (f *Frame) At(i int, column string) Value {
	col, ok := f.data[column]
	if !ok || i < 0 || i >= len(col) {
		return Missing()
	}
	return col[i]
}

// WithIndex returns a copy of the frame with new row labels.
func (f *Frame) WithIndex(index []int) (*Frame, error) {
	if len(index) != f.Len() {
		return nil, errors.NewDimensionError("Frame.WithIndex", f.Len(), len(index), 0)
	}
	out := f.clone()
	out.index = append([]int(nil), index...)
	return out, nil
}

// WithColumn returns a copy of the frame with the column added or replaced.
func (f *Frame) WithColumn(column string, values []Value) (*Frame, error) {
	if len(values) != f.Len() {
		return nil, errors.NewDimensionError("Frame.WithColumn", f.Len(), len(values), 0)
	}
	out := f.clone()
	if !out.Has(column) {
		out.columns = append(out.columns, column)
	}
	out.data[column] = append([]Value(nil), values...)
	return out, nil
}

// Reindex returns a frame with exactly the given columns. Columns that do not
// exist are filled with missing cells; columns not listed are dropped.
func (f *Frame) Reindex(columns []string) *Frame {
	out := &Frame{
		columns: append([]string(nil), columns...),
		index:   append([]int(nil), f.index...),
		data:    make(map[string][]Value, len(columns)),
	}
	for _, c := range columns {
		if col, ok := f.data[c]; ok {
			out.data[c] = append([]Value(nil), col...)
			continue
		}
		col := make([]Value, f.Len())
		for i := range col {
			col[i] = Missing()
		}
		out.data[c] = col
	}
	return out
}

// Select returns a frame restricted to the given columns, which must exist.
func (f *Frame) Select(columns []string) (*Frame, error) {
	for _, c := range columns {
		if !f.Has(c) {
			return nil, errors.NewValueError("Frame.Select", fmt.Sprintf("unknown column %q", c))
		}
	}
	return f.Reindex(columns), nil
}

// Take returns the rows at the given positions, keeping their index labels.
func (f *Frame) Take(rows []int) (*Frame, error) {
	out := &Frame{
		columns: append([]string(nil), f.columns...),
		index:   make([]int, len(rows)),
		data:    make(map[string][]Value, len(f.columns)),
	}
	for _, c := range f.columns {
		out.data[c] = make([]Value, len(rows))
	}
	for k, i := range rows {
		if i < 0 || i >= f.Len() {
			return nil, errors.NewValueError("Frame.Take", fmt.Sprintf("row %d out of range [0, %d)", i, f.Len()))
		}
		out.index[k] = f.index[i]
		for _, c := range f.columns {
			out.data[c][k] = f.data[c][i]
		}
	}
	return out, nil
}

// Matrix converts the frame into a dense matrix with columns in frame order.
// Missing cells become NaN. Label cells and empty frames are an error.
func (f *Frame) Matrix() (*mat.Dense, error) {
	r, c := f.Len(), len(f.columns)
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("Frame.Matrix",
			fmt.Sprintf("cannot build a %dx%d matrix", r, c), errors.ErrEmptyData)
	}
	out := mat.NewDense(r, c, nil)
	for j, name := range f.columns {
		col, err := f.Floats(name)
		if err != nil {
			return nil, err
		}
		for i, x := range col {
			out.Set(i, j, x)
		}
	}
	return out, nil
}

// Rows returns the frame as row-major cells in column order.
func (f *Frame) Rows() [][]Value {
	rows := make([][]Value, f.Len())
	for i := range rows {
		rows[i] = make([]Value, len(f.columns))
		for j, c := range f.columns {
			rows[i][j] = f.data[c][i]
		}
	}
	return rows
}

func (f *Frame) clone() *Frame {
	out := &Frame{
		columns: append([]string(nil), f.columns...),
		index:   append([]int(nil), f.index...),
		data:    make(map[string][]Value, len(f.columns)),
	}
	for k, v := range f.data {
		out.data[k] = append([]Value(nil), v...)
	}
	return out
}

func defaultIndex(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func checkUnique(columns []string) error {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			return errors.NewValueError("frame", fmt.Sprintf("duplicate column %q", c))
		}
		seen[c] = struct{}{}
	}
	return nil
}
