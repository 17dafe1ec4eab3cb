package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/core/model"
	"github.com/ezoic/surrogo/pkg/errors"
)

// OneHotEncoder encodes categorical string columns as 0/1 indicator columns.
//
// Categories are either learned from data in Fit (sorted) or fixed up front
// with NewOneHotEncoderWithCategories, in which case their order is kept and
// Fit only validates the data against them.
type OneHotEncoder struct {
	model.BaseEstimator

	// Categories は各特徴量のカテゴリ一覧
	Categories [][]string

	// CategoryToIdx は各特徴量のカテゴリ→インデックスマップ
	CategoryToIdx []map[string]int

	NFeatures int

	// NOutputs は出力列数（全カテゴリの合計）
	NOutputs int

	fixed bool
}

// NewOneHotEncoder creates an encoder that learns its categories in Fit.
//
// Example:
//
//	encoder := preprocessing.NewOneHotEncoder()
//	err := encoder.Fit(data)
//	encoded, err := encoder.Transform(data)
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// NewOneHotEncoderWithCategories creates an encoder with a fixed, ordered
// category list per feature. The encoder is usable without calling Fit.
func NewOneHotEncoderWithCategories(categories ...[]string) (*OneHotEncoder, error) {
	e := &OneHotEncoder{fixed: true}
	for j, cats := range categories {
		if len(cats) == 0 {
			return nil, errors.NewValueError("NewOneHotEncoderWithCategories",
				fmt.Sprintf("feature %d has no categories", j))
		}
	}
	if err := e.setCategories(categories); err != nil {
		return nil, err
	}
	e.SetFitted()
	return e, nil
}

// Fit learns the categories of every feature. For an encoder with fixed
// categories it checks that data contains only known labels.
func (e *OneHotEncoder) Fit(data [][]string) (err error) {
	defer errors.Recover(&err, "OneHotEncoder.Fit")
	if len(data) == 0 || len(data[0]) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}
	nFeatures := len(data[0])
	for _, row := range data {
		if len(row) != nFeatures {
			return errors.NewDimensionError("OneHotEncoder.Fit", nFeatures, len(row), 1)
		}
	}

	if e.fixed {
		if nFeatures != e.NFeatures {
			return errors.NewDimensionError("OneHotEncoder.Fit", e.NFeatures, nFeatures, 1)
		}
		for i, row := range data {
			for j, v := range row {
				if _, ok := e.CategoryToIdx[j][v]; !ok {
					return errors.NewValueError("OneHotEncoder.Fit",
						fmt.Sprintf("row %d feature %d: unknown category %q", i, j, v))
				}
			}
		}
		return nil
	}

	categories := make([][]string, nFeatures)
	for j := 0; j < nFeatures; j++ {
		set := make(map[string]struct{})
		for _, row := range data {
			set[row[j]] = struct{}{}
		}
		for c := range set {
			categories[j] = append(categories[j], c)
		}
		sort.Strings(categories[j])
	}
	if err := e.setCategories(categories); err != nil {
		return err
	}
	e.SetFitted()
	return nil
}

func (e *OneHotEncoder) setCategories(categories [][]string) error {
	e.NFeatures = len(categories)
	e.Categories = make([][]string, len(categories))
	e.CategoryToIdx = make([]map[string]int, len(categories))
	e.NOutputs = 0
	for j, cats := range categories {
		idx := make(map[string]int, len(cats))
		for k, c := range cats {
			if _, dup := idx[c]; dup {
				return errors.NewValueError("OneHotEncoder", fmt.Sprintf("duplicate category %q", c))
			}
			idx[c] = k
		}
		e.Categories[j] = append([]string(nil), cats...)
		e.CategoryToIdx[j] = idx
		e.NOutputs += len(cats)
	}
	return nil
}

// Transform one-hot encodes data. Unknown labels encode as all zeros.
func (e *OneHotEncoder) Transform(data [][]string) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "OneHotEncoder.Transform")
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if len(data) == 0 {
		return nil, errors.NewModelError("OneHotEncoder.Transform", "empty data", errors.ErrEmptyData)
	}

	out := mat.NewDense(len(data), e.NOutputs, nil)
	for i, row := range data {
		if len(row) != e.NFeatures {
			return nil, errors.NewDimensionError("OneHotEncoder.Transform", e.NFeatures, len(row), 1)
		}
		offset := 0
		for j, v := range row {
			if k, ok := e.CategoryToIdx[j][v]; ok {
				out.Set(i, offset+k, 1)
			}
			offset += len(e.Categories[j])
		}
	}
	return out, nil
}

// FitTransform fits the encoder on data and returns the encoding of data.
func (e *OneHotEncoder) FitTransform(data [][]string) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "OneHotEncoder.FitTransform")
	if err := e.Fit(data); err != nil {
		return nil, err
	}
	return e.Transform(data)
}

// GetFeatureNamesOut returns "<feature>_<category>" for every output column.
// Missing input names default to x0, x1, ...
//
// 例: ["Solvent"] → ["Solvent_water", "Solvent_ethanol"]
func (e *OneHotEncoder) GetFeatureNamesOut(inputFeatures []string) []string {
	if !e.IsFitted() {
		return nil
	}
	var names []string
	for j, cats := range e.Categories {
		base := fmt.Sprintf("x%d", j)
		if j < len(inputFeatures) {
			base = inputFeatures[j]
		}
		for _, c := range cats {
			names = append(names, base+"_"+c)
		}
	}
	return names
}
