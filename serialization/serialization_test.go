package serialization_test

import (
	"encoding/json"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/linear"
	"github.com/ezoic/surrogo/objective"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/searchspace"
	"github.com/ezoic/surrogo/serialization"
	"github.com/ezoic/surrogo/surrogates"
)

func allBytes() []byte {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestBytesRoundTrip(t *testing.T) {
	for _, b := range [][]byte{nil, {}, allBytes(), []byte("plain ascii"), {0xff, 0x00, 0x80, 0x9f}} {
		s, err := serialization.EncodeBytes(b)
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(s))
		assert.Equal(t, len(b), utf8.RuneCountInString(s))

		back, err := serialization.DecodeBytes(s)
		require.NoError(t, err)
		assert.Equal(t, len(b), len(back))
		if len(b) > 0 {
			assert.Equal(t, b, back)
		}
	}
}

func TestDecodeBytesRejectsWideRunes(t *testing.T) {
	_, err := serialization.DecodeBytes("snowman ☃")
	assert.Error(t, err)
}

func TestRoundTripConfiguration(t *testing.T) {
	gp := surrogates.NewGaussianProcessSurrogate()
	gp.MaxIterations = 17

	lin := surrogates.NewBayesianLinearSurrogate()
	lin.NIter, lin.Tol = 50, 1e-4

	rf := surrogates.NewRandomForestSurrogate()
	rf.NEstimators, rf.MaxDepth, rf.MaxFeatures, rf.RandomState = 7, 3, 0.5, 42

	tests := []struct {
		name  string
		in    surrogates.Surrogate
		check func(t *testing.T, out surrogates.Surrogate)
	}{
		{"gp", gp, func(t *testing.T, out surrogates.Surrogate) {
			assert.Equal(t, 17, out.(*surrogates.GaussianProcessSurrogate).MaxIterations)
		}},
		{"linear", lin, func(t *testing.T, out surrogates.Surrogate) {
			got := out.(*surrogates.BayesianLinearSurrogate)
			assert.Equal(t, 50, got.NIter)
			assert.Equal(t, 1e-4, got.Tol)
		}},
		{"forest", rf, func(t *testing.T, out surrogates.Surrogate) {
			got := out.(*surrogates.RandomForestSurrogate)
			assert.Equal(t, 7, got.NEstimators)
			assert.Equal(t, 3, got.MaxDepth)
			assert.Equal(t, 0.5, got.MaxFeatures)
			assert.Equal(t, int64(42), got.RandomState)
		}},
		{"mean", surrogates.NewMeanPredictionSurrogate(), func(t *testing.T, out surrogates.Surrogate) {
			assert.IsType(t, &surrogates.MeanPredictionSurrogate{}, out)
		}},
		{"pretrained", surrogates.NewPretrainedSurrogate(allBytes()), func(t *testing.T, out surrogates.Surrogate) {
			assert.Equal(t, allBytes(), out.(*surrogates.PretrainedSurrogate).ModelBlob)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := serialization.Marshal(tt.in)
			require.NoError(t, err)

			var fields map[string]any
			require.NoError(t, json.Unmarshal(data, &fields))
			assert.Equal(t, string(tt.in.Kind()), fields["type"])

			out, err := serialization.Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, tt.in.Kind(), out.Kind())
			assert.False(t, out.IsFitted())
			tt.check(t, out)
		})
	}
}

func TestPretrainedBlobIsText(t *testing.T) {
	data, err := serialization.Marshal(surrogates.NewPretrainedSurrogate([]byte{0xe9, 0x41}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"PretrainedSurrogate","model_blob":"éA"}`, string(data))
}

func TestFittedStateIsOmitted(t *testing.T) {
	x, err := searchspace.NewNumericalDiscrete("x", 0, 1, 2, 3)
	require.NoError(t, err)
	space, err := searchspace.New(x)
	require.NoError(t, err)
	obj, err := objective.NewSingleTarget(objective.Target{Name: "y", Mode: objective.ModeMax})
	require.NoError(t, err)
	df, err := frame.NewNumeric([]string{"x", "y"}, [][]float64{{0, 1}, {1, 3}, {2, 5}, {3, 7}})
	require.NoError(t, err)

	s := surrogates.NewBayesianLinearSurrogate()
	before, err := serialization.Marshal(s)
	require.NoError(t, err)
	require.NoError(t, s.Fit(space, obj, df))
	after, err := serialization.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))

	out, err := serialization.Unmarshal(after)
	require.NoError(t, err)
	assert.False(t, out.IsFitted())
}

func TestCustomArchitectureRefusesSerialization(t *testing.T) {
	data, err := serialization.Marshal(surrogates.NewCustomArchitectureSurrogate(linear.NewBayesianRidge()))
	assert.Nil(t, data)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSerializationUnsupported)

	var target *errors.SerializationUnsupportedError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "CustomArchitectureSurrogate", target.TypeName)

	_, err = serialization.Unmarshal([]byte(`{"type":"CustomArchitectureSurrogate"}`))
	assert.ErrorIs(t, err, errors.ErrSerializationUnsupported)
}

func TestUnmarshalErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"not json":      `{`,
		"missing type":  `{"n_iter": 3}`,
		"unknown type":  `{"type":"NeuralNetSurrogate"}`,
		"unknown field": `{"type":"MeanPredictionSurrogate","mean":3}`,
		"wide rune":     `{"type":"PretrainedSurrogate","model_blob":"☃"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := serialization.Unmarshal([]byte(doc))
			assert.Error(t, err)
		})
	}
}
