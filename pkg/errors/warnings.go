package errors

import (
	"fmt"

	"github.com/ezoic/surrogo/pkg/log"
)

// ConvergenceWarning signals that an iterative optimizer stopped before
// reaching its convergence criterion. The result is still usable.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

// NewConvergenceWarning creates a ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

func (w *ConvergenceWarning) Error() string {
	return fmt.Sprintf("%s did not converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
}

// Warn logs a non-fatal condition at warn level on the "warnings" logger.
// Warnings never abort the caller's operation.
func Warn(w error) {
	if w == nil {
		return
	}
	fields := []interface{}{"warning.type", fmt.Sprintf("%T", w)}
	if cw, ok := w.(*ConvergenceWarning); ok {
		fields = append(fields, "algorithm", cw.Algorithm, "iterations", cw.Iterations)
	}
	log.GetLoggerWithName("warnings").Warn(w.Error(), fields...)
}
