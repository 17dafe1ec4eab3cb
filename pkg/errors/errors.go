// Package errors provides the error types used throughout surrogo.
//
// The package is a thin layer over github.com/cockroachdb/errors. It keeps the
// standard wrapping helpers (New, Wrap, Is, As, ...) available under one import
// and adds typed errors for the failure modes of model fitting and prediction:
//
//   - NotFittedError: a model was used before Fit completed
//   - DimensionError: matrix shapes do not line up
//   - ValueError / ValidationError: invalid arguments or configuration
//   - ModelError: wraps a lower-level failure with an operation name
//   - CapabilityMismatchError: the search space needs a feature the model lacks
//   - UnsupportedConfigurationError: the combination is not implemented
//   - SerializationUnsupportedError: the model variant cannot be serialized
//
// All typed errors support errors.Is against their sentinel and errors.As
// against their concrete type, also through fmt.Errorf("%w") chains.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors.
var (
	ErrNotImplemented           = errors.New("not implemented")
	ErrEmptyData                = errors.New("empty data")
	ErrSingularMatrix           = errors.New("singular matrix")
	ErrDimensionMismatch        = errors.New("dimension mismatch")
	ErrNotFitted                = errors.New("model not fitted")
	ErrModelNotTrained          = ErrNotFitted
	ErrCapabilityMismatch       = errors.New("capability mismatch")
	ErrSerializationUnsupported = errors.New("serialization unsupported")
	ErrInvalidValue             = errors.New("invalid value")
)

// Re-exported helpers so callers only need one errors import.
var (
	New       = errors.New
	Newf      = errors.Newf
	Wrap      = errors.Wrap
	Wrapf     = errors.Wrapf
	Is        = errors.Is
	As        = errors.As
	Unwrap    = errors.Unwrap
	WithStack = errors.WithStack
)

// NotFittedError is returned when a model is used before it has been trained.
type NotFittedError struct {
	ModelName string
	Method    string
}

// NewNotFittedError creates a NotFittedError for the given model and method.
func NewNotFittedError(modelName, method string) *NotFittedError {
	return &NotFittedError{ModelName: modelName, Method: method}
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s: the model must be trained before calling %s", e.ModelName, e.Method)
}

// Is reports whether target is the not-trained sentinel.
func (e *NotFittedError) Is(target error) bool {
	return target == ErrNotFitted
}

// DimensionError reports a shape mismatch along one axis.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError creates a DimensionError. Axis 0 refers to rows, 1 to columns.
func NewDimensionError(op string, expected, got, axis int) *DimensionError {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

func (e *DimensionError) Error() string {
	axis := "rows"
	if e.Axis == 1 {
		axis = "columns"
	}
	return fmt.Sprintf("%s: dimension mismatch in %s: expected %d, got %d", e.Op, axis, e.Expected, e.Got)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// ValueError reports an invalid argument value.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError creates a ValueError.
func NewValueError(op, message string) *ValueError {
	return &ValueError{Op: op, Message: message}
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Is reports whether target is ErrInvalidValue.
func (e *ValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

// ValidationError reports a field that failed validation.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// Is reports whether target is ErrInvalidValue.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidValue
}

// ModelError wraps an underlying error with the operation that produced it.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

// NewModelError creates a ModelError.
func NewModelError(op, message string, err error) *ModelError {
	return &ModelError{Op: op, Message: message, Err: err}
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("surrogo: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("surrogo: %s: %s: %v", e.Op, e.Message, e.Err)
}

// Unwrap returns the wrapped error.
func (e *ModelError) Unwrap() error {
	return e.Err
}

// CapabilityMismatchError is returned when the search space requires a
// capability (currently transfer learning) that the surrogate does not offer.
type CapabilityMismatchError struct {
	Surrogate  string
	Capability string
}

// NewCapabilityMismatchError creates a CapabilityMismatchError.
func NewCapabilityMismatchError(surrogate, capability string) *CapabilityMismatchError {
	return &CapabilityMismatchError{Surrogate: surrogate, Capability: capability}
}

func (e *CapabilityMismatchError) Error() string {
	return fmt.Sprintf("the search space requires %s but the selected surrogate model type (%s) does not support it",
		e.Capability, e.Surrogate)
}

// Is reports whether target is ErrCapabilityMismatch or ErrInvalidValue.
func (e *CapabilityMismatchError) Is(target error) bool {
	return target == ErrCapabilityMismatch || target == ErrInvalidValue
}

// UnsupportedConfigurationError is returned for model/search space
// combinations that are not implemented.
type UnsupportedConfigurationError struct {
	Op      string
	Message string
}

// NewUnsupportedConfigurationError creates an UnsupportedConfigurationError.
func NewUnsupportedConfigurationError(op, message string) *UnsupportedConfigurationError {
	return &UnsupportedConfigurationError{Op: op, Message: message}
}

func (e *UnsupportedConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns ErrNotImplemented.
func (e *UnsupportedConfigurationError) Unwrap() error {
	return ErrNotImplemented
}

// SerializationUnsupportedError is returned when a surrogate variant that
// cannot be represented faithfully is asked to serialize itself.
type SerializationUnsupportedError struct {
	TypeName string
}

// NewSerializationUnsupportedError creates a SerializationUnsupportedError.
func NewSerializationUnsupportedError(typeName string) *SerializationUnsupportedError {
	return &SerializationUnsupportedError{TypeName: typeName}
}

func (e *SerializationUnsupportedError) Error() string {
	return fmt.Sprintf("serializing objects of type '%s' is not supported", e.TypeName)
}

// Unwrap returns ErrSerializationUnsupported.
func (e *SerializationUnsupportedError) Unwrap() error {
	return ErrSerializationUnsupported
}

// Recover converts a panic raised inside op into a ModelError stored in *err.
// It must be deferred directly:
//
//	func (m *Model) Fit(X mat.Matrix) (err error) {
//		defer errors.Recover(&err, "Model.Fit")
//		...
//	}
func Recover(err *error, op string) {
	r := recover()
	if r == nil {
		return
	}
	var cause error
	switch v := r.(type) {
	case error:
		cause = v
	default:
		cause = errors.Newf("%v", v)
	}
	*err = NewModelError(op, "panic recovered", errors.WithStack(cause))
}
