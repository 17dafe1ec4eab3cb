package errors_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	surrogoErrors "github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/pkg/log"
)

func TestWarnUsesConfiguredLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetupLoggerWithWriter(&buf, "warn")
	t.Cleanup(func() { log.SetupLogger("warn") })

	surrogoErrors.Warn(surrogoErrors.NewConvergenceWarning("GaussianProcessSurrogate", 17, "iteration limit"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "warnings", entry[log.ComponentKey])
	assert.Equal(t, "GaussianProcessSurrogate", entry["algorithm"])
	assert.Equal(t, 17.0, entry["iterations"])
	assert.Contains(t, entry["message"], "did not converge after 17 iterations")
}

func TestWarnRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log.SetupLoggerWithWriter(&buf, "error")
	t.Cleanup(func() { log.SetupLogger("warn") })

	surrogoErrors.Warn(surrogoErrors.NewConvergenceWarning("x", 1, "y"))
	surrogoErrors.Warn(nil)
	assert.Empty(t, buf.String())
}
