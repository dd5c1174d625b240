package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Problem types
const (
	TypeValidation    = "/errors/validation"
	TypeNotFound      = "/errors/not-found"
	TypeRateLimit     = "/errors/rate-limit"
	TypeInternal      = "/errors/internal"
	TypeServiceDown   = "/errors/service-unavailable"
	TypeTimeout       = "/errors/timeout"
	TypeUnprocessable = "/errors/unprocessable"
	TypeNotEnoughData = "/errors/data/not-enough"
	TypeEmptyDataset  = "/errors/analysis/empty-dataset"
	TypeMethod        = "/errors/method-not-allowed"
)

// problemTypes maps error codes to problem types. Codes not listed are
// internal.
var problemTypes = map[string]string{
	CodeValidationFailed: TypeValidation,
	CodeInvalidRequest:   TypeValidation,
	CodeNotFound:         TypeNotFound,
	CodeSheetNotFound:    TypeNotFound,
	CodeChartNotFound:    TypeNotFound,
	CodeNotEnoughData:    TypeNotEnoughData,
	CodeEmptyDataset:     TypeEmptyDataset,
	CodeRegressionFailed: TypeUnprocessable,
	CodeRateLimit:        TypeRateLimit,
	CodeUnavailable:      TypeServiceDown,
	CodeReloadFailed:     TypeServiceDown,
}

// ErrorHandler renders errors as problem details and logs them.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an error handler. includeStack adds stack traces
// to 5xx responses and belongs to development builds only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError responds with the problem for err. Server errors are logged
// at error level, client errors at warn.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
		if h.includeStack {
			problem.WithExtension("stack", stackTrace())
		}
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))

	h.write(w, r, problem)
}

// ErrorToProblem converts err. An APIError keeps its status and code,
// a cancelled or expired context is a timeout, anything else is internal
// with a generic detail.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiProblem(apiErr, r)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return statusProblem(http.StatusGatewayTimeout, TypeTimeout,
			"The request took too long to process and was cancelled", r)
	default:
		return statusProblem(http.StatusInternalServerError, TypeInternal,
			"An unexpected error occurred while processing your request", r)
	}
}

func apiProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType, ok := problemTypes[apiErr.ErrorCode]
	if !ok {
		problemType = TypeInternal
	}
	problem := statusProblem(apiErr.StatusCode, problemType, apiErr.Message, r).
		WithExtension("error_code", apiErr.ErrorCode)

	switch details := apiErr.Details.(type) {
	case nil:
	case ValidationErrors:
		problem.WithExtension("errors", details.Errors)
	default:
		problem.WithExtension("details", details)
	}
	return problem
}

func statusProblem(status int, problemType, detail string, r *http.Request) *ProblemDetails {
	return NewProblemDetails(status, problemType, http.StatusText(status), detail, r.URL.Path)
}

// HandlePanic responds 500 for a recovered panic.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())))

	problem := statusProblem(http.StatusInternalServerError, TypeInternal, "An unexpected error occurred", r)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", stackTrace())
	}
	h.write(w, r, problem)
}

// NotFound is the router's fallback for unknown paths.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, statusProblem(http.StatusNotFound, TypeNotFound, "The requested resource was not found", r))
}

// MethodNotAllowed is the router's fallback for unsupported methods.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, statusProblem(http.StatusMethodNotAllowed, TypeMethod,
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r))
}

// write stamps the request id as trace_id and renders the problem.
func (h *ErrorHandler) write(w http.ResponseWriter, r *http.Request, problem *ProblemDetails) {
	problem.WithExtension("trace_id", middleware.GetReqID(r.Context()))
	if err := render.Render(w, r, problem); err != nil {
		h.logger.WarnContext(r.Context(), "failed to render problem", slog.String("error", err.Error()))
	}
}

func stackTrace() string {
	buf := make([]byte, 8<<10)
	return string(buf[:runtime.Stack(buf, false)])
}

// RecoveryMiddleware turns panics into 500 problem responses.
// http.ErrAbortHandler is re-raised so net/http can abort the response.
func RecoveryMiddleware(handler *ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					handler.HandlePanic(w, r, rec)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
