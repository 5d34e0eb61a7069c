package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/studyhive/studyhive/pkg/apperror"
	"github.com/studyhive/studyhive/pkg/validate"
)

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// APIError represents an error response
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Meta contains pagination and other metadata
type Meta struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	Total      int `json:"total,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

// ErrorReporter receives errors that end up as 500 responses
type ErrorReporter interface {
	Error(msg string, args ...interface{})
}

var reporter ErrorReporter

// SetErrorReporter installs the reporter used for unclassified errors
func SetErrorReporter(r ErrorReporter) {
	reporter = r
}

// JSON sends a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// JSONWithMeta sends a JSON response with pagination metadata
func JSONWithMeta(w http.ResponseWriter, status int, data interface{}, meta *Meta) {
	write(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta,
	})
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, status int, code, message string) {
	write(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// ValidationError sends a 400 response listing the offending fields
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	write(w, http.StatusBadRequest, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    string(apperror.KindValidation),
			Message: "Validation failed",
			Fields:  fields,
		},
	})
}

// FromError maps an error to a response. Classified errors keep their
// message; anything else is reported and answered with a generic 500.
func FromError(w http.ResponseWriter, err error, fallback string) {
	if fields := validate.Fields(err); fields != nil {
		ValidationError(w, fields)
		return
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		if reporter != nil {
			reporter.Error(fallback, err)
		}
		InternalError(w, fallback)
		return
	}

	switch appErr.Kind {
	case apperror.KindNotFound:
		NotFound(w, appErr.Message)
	case apperror.KindForbidden:
		Forbidden(w, appErr.Message)
	case apperror.KindValidation:
		Error(w, http.StatusBadRequest, string(apperror.KindValidation), appErr.Message)
	case apperror.KindConflict:
		Conflict(w, appErr.Message)
	case apperror.KindUnauthorized:
		Unauthorized(w, appErr.Message)
	case apperror.KindExternal:
		if reporter != nil {
			reporter.Error(fallback, err)
		}
		Error(w, http.StatusBadGateway, string(apperror.KindExternal), appErr.Message)
	default:
		InternalError(w, fallback)
	}
}

func write(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Common error responses
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, "NOT_FOUND", message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, "FORBIDDEN", message)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, "CONFLICT", message)
}

func PayloadTooLarge(w http.ResponseWriter, message string) {
	Error(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", message)
}
