package model_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/surrogo/core/model"
)

type linearWeights struct {
	Coefficients []float64
	Intercept    float64
	State        model.EstimatorState
}

func TestSaveLoadModelToWriter(t *testing.T) {
	original := &linearWeights{Coefficients: []float64{1, 2, 3}, Intercept: -4}

	var buf bytes.Buffer
	require.NoError(t, model.SaveModelToWriter(original, &buf))

	loaded := &linearWeights{}
	require.NoError(t, model.LoadModelFromReader(loaded, &buf))
	assert.Equal(t, original.Coefficients, loaded.Coefficients)
	assert.Equal(t, original.Intercept, loaded.Intercept)
}

func TestBlobRoundTrip(t *testing.T) {
	blob, err := model.EncodeBlob(&linearWeights{Coefficients: []float64{0.5}, Intercept: 1})
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	var decoded linearWeights
	require.NoError(t, model.DecodeBlob(blob, &decoded))
	assert.Equal(t, []float64{0.5}, decoded.Coefficients)

	assert.Error(t, model.DecodeBlob(nil, &decoded))
	assert.Error(t, model.DecodeBlob([]byte{0xff, 0x00, 0x13}, &decoded))
}

func TestStateManager(t *testing.T) {
	s := model.NewStateManager()
	assert.False(t, s.IsFitted())
	assert.Equal(t, "untrained", s.State().String())

	s.SetFitted()
	s.SetDimensions(3, 10)
	assert.True(t, s.IsFitted())
	f, n := s.Dimensions()
	assert.Equal(t, 3, f)
	assert.Equal(t, 10, n)

	s.Reset()
	assert.False(t, s.IsFitted())
	f, n = s.Dimensions()
	assert.Zero(t, f)
	assert.Zero(t, n)
}
