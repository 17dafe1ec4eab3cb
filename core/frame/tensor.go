package frame

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/pkg/errors"
)

// ToTensor converts computational frames into dense matrices, one per frame.
// Every frame must be fully numeric and free of missing values.
func ToTensor(frames ...*Frame) ([]*mat.Dense, error) {
	out := make([]*mat.Dense, len(frames))
	for k, f := range frames {
		m, err := f.Matrix()
		if err != nil {
			return nil, err
		}
		r, c := m.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if math.IsNaN(m.At(i, j)) {
					return nil, errors.NewValueError("frame.ToTensor",
						"computational representation contains missing values in column "+f.columns[j])
				}
			}
		}
		out[k] = m
	}
	return out, nil
}
