// Package errors provides the typed errors and the warning channel used
// across the iristree workflow. Error values carry stack traces via
// cockroachdb/errors and marshal themselves into zerolog events for
// structured output.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("iristree warning: %v\n", w)
	}
	// Set lazily by pkg/log to avoid a circular import.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the process-wide warning handler. Handing in a
// no-op silences warnings such as UndefinedMetricWarning.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink. When set it
// takes precedence over the plain handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a non-fatal warning through the configured sink.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// UndefinedMetricWarning is raised when an evaluation metric cannot be
// computed for a class, e.g. precision when a class was never predicted.
// The metric is set to Result for that class instead of failing the run.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %g due to %s", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning creates a new UndefinedMetricWarning.
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// NotFittedError is returned when Predict or Transform is called on an
// estimator before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("iristree: %s: this estimator is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace attached.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError reports an input whose shape disagrees with what the
// estimator saw during fitting.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("iristree: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError reports a hyperparameter or configuration value that failed
// validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("iristree: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace attached.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is unusable for the operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("iristree: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError wraps a lower-level failure inside an estimator operation.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("iristree: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("iristree: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace attached.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// DataLoadError reports a malformed input file. Row is 1-based and counts
// the header; Row 0 means the failure is not tied to a single row.
type DataLoadError struct {
	Path   string
	Row    int
	Column string
	Reason string
}

func (e *DataLoadError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("iristree: failed to load %s: row %d, column %s: %s", e.Path, e.Row, e.Column, e.Reason)
	}
	return fmt.Sprintf("iristree: failed to load %s: %s", e.Path, e.Reason)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DataLoadError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Int("row", e.Row).
		Str("column", e.Column).
		Str("reason", e.Reason).
		Str("type", "DataLoadError")
}

// NewDataLoadError creates a DataLoadError with a stack trace attached.
func NewDataLoadError(path string, row int, column, reason string) error {
	err := &DataLoadError{Path: path, Row: row, Column: column, Reason: reason}
	return errors.WithStack(err)
}

// UnseenCategoryError is returned when a categorical value shows up at
// transform time that the indexer never saw during fitting.
type UnseenCategoryError struct {
	Indexer  string
	Category string
}

func (e *UnseenCategoryError) Error() string {
	return fmt.Sprintf("iristree: %s: unseen category %q at transform time", e.Indexer, e.Category)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *UnseenCategoryError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("indexer", e.Indexer).
		Str("category", e.Category).
		Str("type", "UnseenCategoryError")
}

// NewUnseenCategoryError creates an UnseenCategoryError with a stack trace
// attached.
func NewUnseenCategoryError(indexer, category string) error {
	err := &UnseenCategoryError{Indexer: indexer, Category: category}
	return errors.WithStack(err)
}

// DegenerateFoldError is returned by cross-validation when a fold cannot
// produce a meaningful score, e.g. its training partition holds fewer than
// two classes.
type DegenerateFoldError struct {
	Candidate string
	Fold      int
	Reason    string
}

func (e *DegenerateFoldError) Error() string {
	return fmt.Sprintf("iristree: degenerate fold %d for candidate %s: %s", e.Fold, e.Candidate, e.Reason)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DegenerateFoldError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("candidate", e.Candidate).
		Int("fold", e.Fold).
		Str("reason", e.Reason).
		Str("type", "DegenerateFoldError")
}

// NewDegenerateFoldError creates a DegenerateFoldError with a stack trace
// attached.
func NewDegenerateFoldError(candidate string, fold int, reason string) error {
	err := &DegenerateFoldError{Candidate: candidate, Fold: fold, Reason: reason}
	return errors.WithStack(err)
}

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

var (
	// ErrEmptyData is returned when an operation receives no data.
	ErrEmptyData = New("empty data")
)
