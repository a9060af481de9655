package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeFileNotFound   ErrorType = "FILE_NOT_FOUND"
	ErrTypeMissingSheet   ErrorType = "MISSING_SHEET"
	ErrTypeLoad           ErrorType = "LOAD"
	ErrTypeMetricNotFound ErrorType = "METRIC_NOT_FOUND"
	ErrTypeValidation     ErrorType = "VALIDATION"
	ErrTypeNotFound       ErrorType = "NOT_FOUND"
	ErrTypeConfig         ErrorType = "CONFIG"
	ErrTypeViewer         ErrorType = "VIEWER"
)

// Sentinels matched by errors.Is against any AppError of the same type
var (
	ErrFileNotFound   = stderrors.New("file not found")
	ErrMissingSheet   = stderrors.New("missing sheet")
	ErrLoad           = stderrors.New("load failed")
	ErrMetricNotFound = stderrors.New("metric not found")
)

var sentinelByType = map[ErrorType]error{
	ErrTypeFileNotFound:   ErrFileNotFound,
	ErrTypeMissingSheet:   ErrMissingSheet,
	ErrTypeLoad:           ErrLoad,
	ErrTypeMetricNotFound: ErrMetricNotFound,
}

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel of the error's type
func (e *AppError) Is(target error) bool {
	sentinel, ok := sentinelByType[e.Type]
	return ok && sentinel == target
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewFileNotFoundError reports a workbook path that does not resolve
func NewFileNotFoundError(path string, cause error) *AppError {
	return NewAppError(ErrTypeFileNotFound, fmt.Sprintf("file %q not found", path), cause).
		WithContext("path", path)
}

// NewMissingSheetError reports a required sheet absent from the workbook
func NewMissingSheetError(path, sheet string) *AppError {
	return NewAppError(ErrTypeMissingSheet, fmt.Sprintf("sheet %q not found", sheet), nil).
		WithContext("path", path).
		WithContext("sheet", sheet)
}

// NewLoadError reports any other failure while reading the workbook
func NewLoadError(message string, cause error) *AppError {
	return NewAppError(ErrTypeLoad, message, cause)
}

// NewMetricNotFoundError reports a chart metric absent from its table
func NewMetricNotFoundError(table, metric string) *AppError {
	return NewAppError(ErrTypeMetricNotFound, fmt.Sprintf("Metric '%s' not found in data.", metric), nil).
		WithContext("table", table).
		WithContext("metric", metric)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewViewerError reports a failure to display the dashboard
func NewViewerError(message string, cause error) *AppError {
	return NewAppError(ErrTypeViewer, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in err's chain
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// Diagnostic returns the message printed to stdout when loading fails
func Diagnostic(err error, path string) string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}
	switch appErr.Type {
	case ErrTypeFileNotFound:
		return fmt.Sprintf("Error: The file '%s' was not found. Make sure it's in the correct directory.", path)
	case ErrTypeMissingSheet:
		sheet, _ := appErr.Context["sheet"].(string)
		return fmt.Sprintf("Error: Sheet name '%s' not found in the Excel file. Please check sheet names.", sheet)
	default:
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}
}
