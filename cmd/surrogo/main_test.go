package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/surrogates"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFixtures(t *testing.T, kind string) (cfgPath, dataPath, candPath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "surrogo.yaml")
	dataPath = filepath.Join(dir, "measurements.csv")
	candPath = filepath.Join(dir, "candidates.csv")

	cfg := `
surrogate:
  kind: ` + kind + `
  n_estimators: 10
searchspace:
  parameters:
    - {name: x, type: numerical_discrete, values: [0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10]}
    - {name: solvent, type: categorical, labels: [water, ethanol]}
objective:
  targets:
    - {name: y, mode: MAX}
storage:
  backend: sqlite
  path: ` + filepath.Join(dir, "surrogo.db") + `
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	require.NoError(t, os.WriteFile(dataPath, []byte(
		"x,solvent,y\n0,water,1\n2,ethanol,5.5\n4,water,9\n6,ethanol,13.5\n8,water,17\n10,ethanol,21.5\n"), 0o600))
	require.NoError(t, os.WriteFile(candPath, []byte("x,solvent\n1,water\n9,ethanol\n"), 0o600))
	return cfgPath, dataPath, candPath
}

func TestFitSaveAndList(t *testing.T) {
	cfgPath, dataPath, _ := writeFixtures(t, "BayesianLinearSurrogate")

	out, err := run(t, "fit", "--config", cfgPath, "--data", dataPath, "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "BayesianLinearSurrogate")
	assert.Contains(t, out, "saved:")

	out, err = run(t, "list", "--config", cfgPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "BayesianLinearSurrogate")

	id := strings.Fields(lines[1])[0]
	_, err = run(t, "list", "--config", cfgPath, "--delete", id)
	require.NoError(t, err)
	out, err = run(t, "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)
}

func TestPredict(t *testing.T) {
	cfgPath, dataPath, candPath := writeFixtures(t, "BayesianLinearSurrogate")

	out, err := run(t, "predict", "--config", cfgPath, "--data", dataPath, "--candidates", candPath)
	require.NoError(t, err)

	result, err := frame.ReadCSV(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "solvent", "y_mean", "y_std"}, result.Columns())
	require.Equal(t, 2, result.Len())

	low, _ := result.At(0, "y_mean").Float()
	high, _ := result.At(1, "y_mean").Float()
	assert.Less(t, low, high)
	sd, _ := result.At(0, "y_std").Float()
	assert.Greater(t, sd, 0.0)
}

func TestScore(t *testing.T) {
	cfgPath, dataPath, _ := writeFixtures(t, "RandomForestSurrogate")

	out, err := run(t, "score", "--config", cfgPath, "--data", dataPath, "--workers", "2")
	require.NoError(t, err)
	for _, key := range []string{"folds:     6", "rmse:", "nlpd:", "coverage:"} {
		assert.Contains(t, out, key)
	}
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "fit", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// The scaled problem is the same for every choice of limits, amplitude and
// bias, so the normalized posterior must be too. A constant function has no
// spread to standardize and is excluded.
func TestSimulationIsScaleInvariant(t *testing.T) {
	for _, kind := range []surrogates.Kind{surrogates.KindBayesianLinear, surrogates.KindMeanPrediction} {
		for _, fn := range []string{"sine", "linear", "cubic"} {
			t.Run(string(kind)+"/"+fn, func(t *testing.T) {
				unit := plotOptions{function: fn, kind: string(kind), points: 6, seed: 7, lower: 0, upper: 1, amplitude: 1, bias: 0}
				wide := unit
				wide.lower, wide.upper, wide.amplitude, wide.bias = -50, 30, 40, 7

				a, err := simulate(unit)
				require.NoError(t, err)
				b, err := simulate(wide)
				require.NoError(t, err)

				require.Len(t, b.mean, gridSize)
				for i := range a.mean {
					assert.InDelta(t, a.mean[i], (b.mean[i]-wide.bias)/wide.amplitude, 1e-6)
					assert.InDelta(t, a.stddev[i], b.stddev[i]/wide.amplitude, 1e-6)
				}
			})
		}
	}
}

func TestSimulationErrors(t *testing.T) {
	base := plotOptions{function: "sine", kind: string(surrogates.KindMeanPrediction), points: 3, upper: 1, amplitude: 1}

	bad := base
	bad.function = "tan"
	_, err := simulate(bad)
	assert.Error(t, err)

	bad = base
	bad.upper = 0
	_, err = simulate(bad)
	assert.Error(t, err)

	bad = base
	bad.points = 0
	_, err = simulate(bad)
	assert.Error(t, err)
}

func TestPlotWritesImage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "posterior.png")
	_, err := run(t, "plot", "--function", "cubic", "--surrogate", "MeanPredictionSurrogate", "--out", out)
	require.NoError(t, err)
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
