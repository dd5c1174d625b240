// Package errors renders API failures as RFC 7807 problem details.
package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	cause      error
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Unwrap returns the error the API error was built from, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents one invalid field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Wrap creates an APIError that keeps err for errors.Is and errors.As.
func Wrap(err error, statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    err.Error(),
		cause:      err,
	}
}

// Error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeSheetNotFound    = "SHEET_NOT_FOUND"
	CodeChartNotFound    = "CHART_NOT_FOUND"
	CodeNotEnoughData    = "NOT_ENOUGH_DATA"
	CodeEmptyDataset     = "EMPTY_DATASET"
	CodeRegressionFailed = "REGRESSION_FAILED"
	CodeRateLimit        = "RATE_LIMIT_EXCEEDED"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeReloadFailed     = "RELOAD_FAILED"
)

// ErrRateLimitExceeded is returned by the rate limiter.
var ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimit, "Rate limit exceeded")

// ErrValidation creates a validation error for a single field
func ErrValidation(field, message string) *APIError {
	return NewValidationErrors([]ValidationError{{Field: field, Message: message}})
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}

// ResourceNotFound reports a missing variable, regression or file.
func ResourceNotFound(err error, resource string) *APIError {
	return Wrap(err, http.StatusNotFound, CodeNotFound, resource+" not found")
}

// SheetNotFound reports a sheet the workbook does not have.
func SheetNotFound(err error) *APIError {
	return Wrap(err, http.StatusNotFound, CodeSheetNotFound, "Sheet not found")
}

// ChartNotFound reports a chart name outside the gallery.
func ChartNotFound(err error) *APIError {
	return Wrap(err, http.StatusNotFound, CodeChartNotFound, "Chart not found")
}

// NotEnoughData reports a selection with nothing to plot or compute.
func NotEnoughData(err error) *APIError {
	return Wrap(err, http.StatusUnprocessableEntity, CodeNotEnoughData, "Not enough data for the selection")
}

// EmptyDataset reports a regression left with no rows.
func EmptyDataset(err error) *APIError {
	return Wrap(err, http.StatusUnprocessableEntity, CodeEmptyDataset, "The data for regression is empty after dropping missing values")
}

// RegressionFailed reports a regression that could not be fitted.
func RegressionFailed(err error) *APIError {
	return Wrap(err, http.StatusUnprocessableEntity, CodeRegressionFailed, "Regression could not be fitted")
}

// ReloadFailed reports a dataset reload that kept the previous snapshot.
func ReloadFailed(err error) *APIError {
	return Wrap(err, http.StatusServiceUnavailable, CodeReloadFailed, "Dataset reload failed; previous data kept")
}
