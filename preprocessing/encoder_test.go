package preprocessing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/preprocessing"
)

func TestOneHotEncoder_Fit(t *testing.T) {
	data := [][]string{
		{"water", "low"},
		{"ethanol", "high"},
		{"water", "low"},
		{"acetone", "mid"},
	}

	encoder := preprocessing.NewOneHotEncoder()
	if err := encoder.Fit(data); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if !encoder.IsFitted() {
		t.Error("Encoder should be fitted after Fit()")
	}

	// 学習したカテゴリはソート済み
	assert.Equal(t, [][]string{
		{"acetone", "ethanol", "water"},
		{"high", "low", "mid"},
	}, encoder.Categories)
	assert.Equal(t, 6, encoder.NOutputs)
}

func TestOneHotEncoder_FixedCategoriesKeepOrder(t *testing.T) {
	encoder, err := preprocessing.NewOneHotEncoderWithCategories([]string{"water", "ethanol", "acetone"})
	require.NoError(t, err)
	require.True(t, encoder.IsFitted())

	out, err := encoder.Transform([][]string{{"ethanol"}, {"water"}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 1, 0, 0}, out.(*mat.Dense).RawMatrix().Data)

	assert.Equal(t, []string{"Solvent_water", "Solvent_ethanol", "Solvent_acetone"},
		encoder.GetFeatureNamesOut([]string{"Solvent"}))

	// Fit validates against the fixed categories instead of relearning them
	require.NoError(t, encoder.Fit([][]string{{"acetone"}}))
	assert.Equal(t, []string{"water", "ethanol", "acetone"}, encoder.Categories[0])
	assert.ErrorIs(t, encoder.Fit([][]string{{"toluene"}}), errors.ErrInvalidValue)
}

func TestOneHotEncoder_InvalidCategories(t *testing.T) {
	_, err := preprocessing.NewOneHotEncoderWithCategories([]string{})
	assert.Error(t, err)

	_, err = preprocessing.NewOneHotEncoderWithCategories([]string{"a", "a"})
	assert.Error(t, err)
}

func TestOneHotEncoder_UnknownCategoryEncodesZeros(t *testing.T) {
	encoder := preprocessing.NewOneHotEncoder()
	require.NoError(t, encoder.Fit([][]string{{"a"}, {"b"}}))

	out, err := encoder.Transform([][]string{{"c"}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, mat.Sum(out))
}

func TestOneHotEncoder_Errors(t *testing.T) {
	encoder := preprocessing.NewOneHotEncoder()

	_, err := encoder.Transform([][]string{{"a"}})
	assert.ErrorIs(t, err, errors.ErrNotFitted)
	assert.Nil(t, encoder.GetFeatureNamesOut(nil))

	assert.ErrorIs(t, encoder.Fit(nil), errors.ErrEmptyData)
	assert.ErrorIs(t, encoder.Fit([][]string{{"a", "b"}, {"c"}}), errors.ErrDimensionMismatch)

	require.NoError(t, encoder.Fit([][]string{{"a", "x"}}))
	_, err = encoder.Transform([][]string{{"a"}})
	assert.ErrorIs(t, err, errors.ErrDimensionMismatch)
	assert.Equal(t, []string{"x0_a", "x1_x"}, encoder.GetFeatureNamesOut(nil))
}
