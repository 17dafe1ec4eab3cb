package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/surrogo/objective"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/searchspace"
	"github.com/ezoic/surrogo/surrogates"
)

const hybrid = `
log:
  level: debug
surrogate:
  kind: RandomForestSurrogate
  n_estimators: 25
  max_depth: 4
searchspace:
  parameters:
    - name: temperature
      type: numerical_discrete
      values: [20, 40, 60]
    - name: solvent
      type: categorical
      labels: [water, ethanol]
    - name: site
      type: task
      labels: [a, b]
      active_values: [a]
objective:
  targets:
    - name: yield
      mode: MAX
storage:
  backend: sqlite
  path: /tmp/surrogo.db
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(hybrid))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 25, cfg.Surrogate.NEstimators)
	assert.Equal(t, 1.0, cfg.Surrogate.MaxFeatures, "defaults survive partial sections")
	assert.Equal(t, "sqlite", cfg.Storage.Backend)

	s, err := NewSurrogate(cfg.Surrogate)
	require.NoError(t, err)
	rf, ok := s.(*surrogates.RandomForestSurrogate)
	require.True(t, ok)
	assert.Equal(t, 25, rf.NEstimators)
	assert.Equal(t, 4, rf.MaxDepth)

	space, err := NewSearchSpace(cfg.SearchSpace)
	require.NoError(t, err)
	assert.Equal(t, []string{"temperature", "solvent", "site"}, space.ParameterNames())
	assert.Equal(t, 2, space.NTasks())
	assert.Equal(t, searchspace.TypeDiscrete, space.Type())

	obj, err := NewObjective(cfg.Objective)
	require.NoError(t, err)
	assert.IsType(t, &objective.SingleTarget{}, obj)
}

func TestParseRejects(t *testing.T) {
	tests := map[string]string{
		"empty": ``,
		"unknown key": `
surrogate: {kind: MeanPredictionSurrogate, colour: red}
searchspace: {parameters: [{name: x, type: numerical_discrete, values: [1, 2]}]}
objective: {targets: [{name: y, mode: MAX}]}`,
		"unknown kind": `
surrogate: {kind: NeuralNet}
searchspace: {parameters: [{name: x, type: numerical_discrete, values: [1, 2]}]}
objective: {targets: [{name: y, mode: MAX}]}`,
		"continuous without bounds": `
searchspace: {parameters: [{name: x, type: numerical_continuous}]}
objective: {targets: [{name: y, mode: MAX}]}`,
		"categorical without labels": `
searchspace: {parameters: [{name: c, type: categorical}]}
objective: {targets: [{name: y, mode: MAX}]}`,
		"pretrained without blob": `
surrogate: {kind: PretrainedSurrogate}
searchspace: {parameters: [{name: x, type: numerical_discrete, values: [1, 2]}]}
objective: {targets: [{name: y, mode: MAX}]}`,
		"sqlite without path": `
searchspace: {parameters: [{name: x, type: numerical_discrete, values: [1, 2]}]}
objective: {targets: [{name: y, mode: MAX}]}
storage: {backend: sqlite}`,
		"weights mismatch": `
searchspace: {parameters: [{name: x, type: numerical_discrete, values: [1, 2]}]}
objective:
  targets: [{name: a, mode: MAX, bounds: [0, 1]}, {name: b, mode: MIN, bounds: [0, 1]}]
  weights: [1]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestValidationErrorType(t *testing.T) {
	_, err := Parse([]byte(`
surrogate: {kind: RandomForestSurrogate, max_features: 2}
searchspace: {parameters: [{name: x, type: numerical_discrete, values: [1, 2]}]}
objective: {targets: [{name: y, mode: MAX}]}`))
	require.Error(t, err)
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestLoadAndPretrained(t *testing.T) {
	dir := t.TempDir()
	blob, err := surrogates.EncodePretrainedModel(surrogates.PretrainedModel{Weights: []float64{1}})
	require.NoError(t, err)
	blobPath := filepath.Join(dir, "model.bin")
	require.NoError(t, os.WriteFile(blobPath, blob, 0o600))

	cfgPath := filepath.Join(dir, "surrogo.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
surrogate:
  kind: PretrainedSurrogate
  model_blob_path: `+blobPath+`
searchspace:
  parameters: [{name: x, type: numerical_continuous, bounds: [0, 1]}]
objective:
  targets: [{name: y, mode: MIN}]
`), 0o600))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	s, err := NewSurrogate(cfg.Surrogate)
	require.NoError(t, err)
	assert.Equal(t, blob, s.(*surrogates.PretrainedSurrogate).ModelBlob)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestNewSurrogateKinds(t *testing.T) {
	base := DefaultConfig().Surrogate
	for _, kind := range []surrogates.Kind{
		surrogates.KindGaussianProcess,
		surrogates.KindBayesianLinear,
		surrogates.KindRandomForest,
		surrogates.KindMeanPrediction,
	} {
		cfg := base
		cfg.Kind = string(kind)
		s, err := NewSurrogate(cfg)
		require.NoError(t, err)
		assert.Equal(t, kind, s.Kind())
		assert.False(t, s.IsFitted())
	}

	cfg := base
	cfg.Kind = string(surrogates.KindCustomArchitecture)
	_, err := NewSurrogate(cfg)
	assert.ErrorIs(t, err, errors.ErrNotImplemented)
}

func TestNewObjectiveDesirability(t *testing.T) {
	obj, err := NewObjective(ObjectiveConfig{
		Targets: []objective.Target{
			{Name: "a", Mode: objective.ModeMax, Bounds: &[2]float64{0, 1}},
			{Name: "b", Mode: objective.ModeMin, Bounds: &[2]float64{0, 10}},
		},
		Weights: []float64{2, 1},
	})
	require.NoError(t, err)
	assert.IsType(t, &objective.Desirability{}, obj)
}
