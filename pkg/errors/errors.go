// Package errors defines the error taxonomy shared across the training and
// serving pipelines.
//
// All errors carry the operation that produced them and support the Go 1.13+
// errors.Is / errors.As protocols. Stack traces are attached through
// cockroachdb/errors so that %+v formatting yields the full origin of a
// failure.
//
// The taxonomy mirrors the failure modes of the system:
//
//   - NotFittedError: a transformer or model was used before Fit
//   - DimensionError: matrix shape disagreement
//   - ValueError: invalid argument or data value
//   - ModelError: operation-level failure wrapping an underlying cause
//   - SchemaValidationError: raw input violates a field's declared bounds
//   - ArtifactMissingError: a persisted model/bundle file is absent at load
//   - FeatureMismatchError: engineered record lacks a feature the fitted
//     bundle expects (a configuration bug, never retryable)
package errors

import (
	"fmt"

	crdberrors "github.com/cockroachdb/errors"
)

// prefix is prepended to every error message produced by this package.
const prefix = "wellsync"

// Sentinel errors for errors.Is comparisons.
var (
	// ErrEmptyData indicates an empty matrix or frame was passed to Fit/Transform.
	ErrEmptyData = crdberrors.New("empty data")

	// ErrNotImplemented indicates a requested capability is not implemented.
	ErrNotImplemented = crdberrors.New("not implemented")

	// ErrArtifactMissing indicates a persisted artifact file is absent.
	ErrArtifactMissing = crdberrors.New("artifact not found")

	// ErrModelNotLoaded indicates a task's predictor never became available.
	ErrModelNotLoaded = crdberrors.New("model not loaded")
)

// NotFittedError is returned when Transform or Predict is called on an
// estimator whose Fit has not completed.
type NotFittedError struct {
	ModelName string
	Method    string
}

// NewNotFittedError creates a NotFittedError for the given estimator and method.
func NewNotFittedError(modelName, method string) error {
	return crdberrors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s: %s.%s: estimator is not fitted; call Fit first", prefix, e.ModelName, e.Method)
}

// DimensionError is returned when an input's shape disagrees with the shape
// an estimator was fitted on.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError creates a DimensionError for the given operation.
func NewDimensionError(op string, expected, got, axis int) error {
	return crdberrors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s: dimension mismatch on axis %d: expected %d, got %d",
		prefix, e.Op, e.Axis, e.Expected, e.Got)
}

// ValueError is returned for invalid argument or data values.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError creates a ValueError for the given operation.
func NewValueError(op, message string) error {
	return crdberrors.WithStack(&ValueError{Op: op, Message: message})
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
}

// ModelError wraps an underlying cause with operation context. It is the
// general-purpose error for estimator operations; sentinel causes such as
// ErrEmptyData remain reachable through errors.Is.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

// NewModelError creates a ModelError wrapping err.
func NewModelError(op, message string, err error) error {
	return crdberrors.WithStack(&ModelError{Op: op, Message: message, Err: err})
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s: %v", prefix, e.Op, e.Message, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// SchemaValidationError reports a raw input field that violates its declared
// range or enumeration. It is rejected before the record reaches the
// feature-engineering core and maps to 4xx semantics at the API boundary.
type SchemaValidationError struct {
	Task   string
	Field  string
	Reason string
}

// NewSchemaValidationError creates a SchemaValidationError for the offending field.
func NewSchemaValidationError(task, field, reason string) error {
	return crdberrors.WithStack(&SchemaValidationError{Task: task, Field: field, Reason: reason})
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("%s: %s: invalid field %q: %s", prefix, e.Task, e.Field, e.Reason)
}

// ArtifactMissingError reports a required persisted artifact that is absent
// at load time. The owning task becomes unavailable; other tasks continue.
type ArtifactMissingError struct {
	Task string
	Path string
}

// NewArtifactMissingError creates an ArtifactMissingError for the given path.
func NewArtifactMissingError(task, path string) error {
	return crdberrors.WithStack(&ArtifactMissingError{Task: task, Path: path})
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("%s: %s: artifact not found: %s", prefix, e.Task, e.Path)
}

func (e *ArtifactMissingError) Unwrap() error { return ErrArtifactMissing }

// FeatureMismatchError reports an engineered record that is missing a
// feature the fitted bundle expects even after default filling. This means
// the engineering transform and the bundle are out of sync: a fatal
// configuration bug, not a retryable condition.
type FeatureMismatchError struct {
	Op      string
	Feature string
}

// NewFeatureMismatchError creates a FeatureMismatchError for the given feature.
func NewFeatureMismatchError(op, feature string) error {
	return crdberrors.WithStack(&FeatureMismatchError{Op: op, Feature: feature})
}

func (e *FeatureMismatchError) Error() string {
	return fmt.Sprintf("%s: %s: engineered record is missing expected feature %q", prefix, e.Op, e.Feature)
}

// Recover converts a panic inside an estimator operation into an error on
// *err. Use as:
//
//	func (s *RobustScaler) Fit(X mat.Matrix) (err error) {
//		defer errors.Recover(&err, "RobustScaler.Fit")
//		...
//	}
func Recover(err *error, op string) {
	if r := recover(); r != nil {
		*err = crdberrors.Newf("%s: %s: panic: %v", prefix, op, r)
	}
}
