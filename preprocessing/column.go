package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/core/model"
	"github.com/ezoic/surrogo/pkg/errors"
)

// ColumnScaler is the part of a scaler a ColumnTransformer needs.
type ColumnScaler interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// ColumnGroup binds a scaler to a set of frame columns. A nil Scaler passes
// the columns through unchanged.
type ColumnGroup struct {
	Name    string
	Columns []string
	Scaler  ColumnScaler
}

// Passthrough reports whether the group leaves its columns untouched.
func (g ColumnGroup) Passthrough() bool { return g.Scaler == nil }

// ColumnTransformer applies per-group scalers to labeled frames and
// concatenates the results in group order. Columns not named by any group
// are dropped.
//
// Example:
//
//	ct := preprocessing.NewColumnTransformer(
//		preprocessing.ColumnGroup{Name: "Temp", Columns: []string{"Temp"}, Scaler: preprocessing.NewMinMaxScalerDefault()},
//		preprocessing.ColumnGroup{Name: "Task", Columns: []string{"Task"}},
//	)
//	err := ct.Fit(bounds)
//	X, err := ct.Transform(df)
type ColumnTransformer struct {
	model.BaseEstimator

	Groups []ColumnGroup
}

// NewColumnTransformer creates a ColumnTransformer. Empty groups are kept so
// that group positions match the caller's parameter order.
func NewColumnTransformer(groups ...ColumnGroup) *ColumnTransformer {
	return &ColumnTransformer{Groups: groups}
}

// Fit fits every scaled group on its columns of df.
func (ct *ColumnTransformer) Fit(df *frame.Frame) (err error) {
	defer errors.Recover(&err, "ColumnTransformer.Fit")
	if err := ct.validate(); err != nil {
		return err
	}
	for _, g := range ct.Groups {
		if g.Passthrough() || len(g.Columns) == 0 {
			continue
		}
		X, err := columns(df, g, "ColumnTransformer.Fit")
		if err != nil {
			return err
		}
		if err := g.Scaler.Fit(X); err != nil {
			return errors.Wrapf(err, "fitting scaler for %q", g.Name)
		}
	}
	ct.SetFitted()
	return nil
}

// Transform returns the horizontally stacked group outputs, one row per row
// of df, with columns ordered as GetFeatureNamesOut.
func (ct *ColumnTransformer) Transform(df *frame.Frame) (_ *mat.Dense, err error) {
	defer errors.Recover(&err, "ColumnTransformer.Transform")
	if !ct.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "Transform")
	}
	names := ct.GetFeatureNamesOut()
	if df.Len() == 0 || len(names) == 0 {
		return nil, errors.NewModelError("ColumnTransformer.Transform",
			fmt.Sprintf("cannot build a %dx%d output", df.Len(), len(names)), errors.ErrEmptyData)
	}

	out := mat.NewDense(df.Len(), len(names), nil)
	offset := 0
	for _, g := range ct.Groups {
		if len(g.Columns) == 0 {
			continue
		}
		X, err := columns(df, g, "ColumnTransformer.Transform")
		if err != nil {
			return nil, err
		}
		var part mat.Matrix = X
		if !g.Passthrough() {
			if part, err = g.Scaler.Transform(X); err != nil {
				return nil, errors.Wrapf(err, "transforming %q", g.Name)
			}
		}
		r, c := part.Dims()
		out.Slice(0, r, offset, offset+c).(*mat.Dense).Copy(part)
		offset += c
	}
	return out, nil
}

// TransformFrame is Transform with the output labeled by feature names and
// the row index of df.
func (ct *ColumnTransformer) TransformFrame(df *frame.Frame) (*frame.Frame, error) {
	X, err := ct.Transform(df)
	if err != nil {
		return nil, err
	}
	return frame.FromMatrix(X, ct.GetFeatureNamesOut(), df.Index())
}

// GetFeatureNamesOut returns the output column names in order.
func (ct *ColumnTransformer) GetFeatureNamesOut() []string {
	var names []string
	for _, g := range ct.Groups {
		names = append(names, g.Columns...)
	}
	return names
}

func (ct *ColumnTransformer) validate() error {
	seen := make(map[string]string)
	for _, g := range ct.Groups {
		for _, c := range g.Columns {
			if owner, ok := seen[c]; ok {
				return errors.NewValueError("ColumnTransformer.Fit",
					fmt.Sprintf("column %q is claimed by both %q and %q", c, owner, g.Name))
			}
			seen[c] = g.Name
		}
	}
	return nil
}

func columns(df *frame.Frame, g ColumnGroup, op string) (*mat.Dense, error) {
	sub, err := df.Select(g.Columns)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: group %q", op, g.Name)
	}
	return sub.Matrix()
}
