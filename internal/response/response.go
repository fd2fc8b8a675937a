// Package response renders the standard JSON envelope used by every
// API handler.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"kudospot/internal/services"
)

// ===============================
// RESPONSE TYPES
// ===============================

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success   bool         `json:"success"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp int64        `json:"timestamp,omitempty"`
}

// ErrorDetail carries error information in API responses.
type ErrorDetail struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Fields  []FieldError           `json:"fields,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// FieldError describes a field-specific validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder constructs and writes envelope responses.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a response builder.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// WriteJSON writes an envelope with the given status code.
func (b *Builder) WriteJSON(w http.ResponseWriter, r *http.Request, resp *APIResponse, statusCode int) {
	resp.RequestID = requestID(w, r)
	resp.Timestamp = time.Now().Unix()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		b.logger.Error("Failed to encode JSON response",
			zap.Error(err),
			zap.String("path", r.URL.Path),
		)
	}
}

// WriteSuccess writes a 200 with the given payload.
func (b *Builder) WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, &APIResponse{Success: true, Data: data}, http.StatusOK)
}

// WriteCreated writes a 201 with the created resource.
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, &APIResponse{Success: true, Data: data}, http.StatusCreated)
}

// WriteError maps a service error to its HTTP status and envelope.
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	detail, statusCode := convertError(err)
	if statusCode >= http.StatusInternalServerError {
		b.logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", statusCode),
			zap.Error(err),
		)
	}
	b.WriteJSON(w, r, &APIResponse{Success: false, Error: detail}, statusCode)
}

// ===============================
// PACKAGE-LEVEL HELPERS
// ===============================

var defaultBuilder = NewBuilder(nil)

// SetLogger installs the process logger for package-level writers.
func SetLogger(logger *zap.Logger) {
	defaultBuilder = NewBuilder(logger)
}

// Success writes a 200 envelope using the default builder.
func Success(w http.ResponseWriter, r *http.Request, data interface{}) {
	defaultBuilder.WriteSuccess(w, r, data)
}

// Error writes an error envelope using the default builder.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	defaultBuilder.WriteError(w, r, err)
}

// Unauthorized writes a 401 envelope.
func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	defaultBuilder.WriteJSON(w, r, &APIResponse{
		Success: false,
		Error:   &ErrorDetail{Type: "UNAUTHORIZED", Message: message, Code: "UNAUTHORIZED"},
	}, http.StatusUnauthorized)
}

// NotFound writes a 404 envelope.
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	defaultBuilder.WriteJSON(w, r, &APIResponse{
		Success: false,
		Error:   &ErrorDetail{Type: "NOT_FOUND", Message: message, Code: "NOT_FOUND"},
	}, http.StatusNotFound)
}

// BadRequest writes a 400 envelope.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	defaultBuilder.WriteJSON(w, r, &APIResponse{
		Success: false,
		Error:   &ErrorDetail{Type: "VALIDATION_ERROR", Message: message, Code: "BAD_REQUEST"},
	}, http.StatusBadRequest)
}

// MethodNotAllowed writes a 405 envelope.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	defaultBuilder.WriteJSON(w, r, &APIResponse{
		Success: false,
		Error:   &ErrorDetail{Type: "METHOD_NOT_ALLOWED", Message: "method not allowed", Code: "METHOD_NOT_ALLOWED"},
	}, http.StatusMethodNotAllowed)
}

// ===============================
// INTERNAL
// ===============================

// convertError maps service error types onto wire details and status.
func convertError(err error) (*ErrorDetail, int) {
	var valErr *services.ValidationError
	if errors.As(err, &valErr) {
		fields := make([]FieldError, len(valErr.Fields))
		for i, f := range valErr.Fields {
			fields[i] = FieldError{Field: f.Field, Message: f.Message, Code: f.Code}
		}
		return &ErrorDetail{
			Type:    valErr.Type,
			Message: valErr.Message,
			Code:    valErr.Code,
			Fields:  fields,
			Details: valErr.Details,
		}, valErr.GetStatusCode()
	}

	if serviceErr, ok := services.IsServiceError(err); ok {
		return &ErrorDetail{
			Type:    serviceErr.Type,
			Message: serviceErr.Message,
			Code:    serviceErr.Code,
			Details: serviceErr.Details,
		}, serviceErr.GetStatusCode()
	}

	// Unknown errors never leak internals to the client.
	return &ErrorDetail{
		Type:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Code:    "INTERNAL_ERROR",
	}, http.StatusInternalServerError
}

// requestID reads the correlation ID stamped on the response by the
// tracing middleware.
func requestID(w http.ResponseWriter, r *http.Request) string {
	if id := w.Header().Get("X-Request-ID"); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}
