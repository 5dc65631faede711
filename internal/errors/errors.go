// Package errors defines the coded errors surfaced by the API. Every error
// carries a stable machine-readable code and the HTTP status it maps to.
package errors

import (
	"fmt"
	"net/http"
)

// Error codes returned in the API error envelope.
const (
	CodeUnknownQuestion   = "UNKNOWN_QUESTION"
	CodeMissingAnswer     = "MISSING_ANSWER"
	CodeInvalidAnswer     = "INVALID_ANSWER"
	CodeUnsupportedType   = "UNSUPPORTED_TYPE"
	CodeDateFormat        = "DATE_FORMAT"
	CodeBrokenDefinition  = "BROKEN_DEFINITION"
	CodeFlowDivergence    = "FLOW_DIVERGENCE"
	CodeUnknownRun        = "UNKNOWN_RUN"
	CodeStatusInactive    = "STATUS_INACTIVE"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidPayload    = "INVALID_PAYLOAD"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL"
)

// ServiceError is an error with an API code and HTTP status.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs a ServiceError.
func New(code, message string, status int) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status}
}

// UnknownQuestion reports a question id that is not part of the questionnaire.
func UnknownQuestion(qid string) *ServiceError {
	return New(CodeUnknownQuestion, fmt.Sprintf("Invalid question ID: %s", qid), http.StatusBadRequest)
}

// MissingAnswer reports an empty answer for a required question.
func MissingAnswer(qid, text string) *ServiceError {
	return New(CodeMissingAnswer, fmt.Sprintf("Missing answer for %s: %s", qid, text), http.StatusBadRequest)
}

// InvalidAnswer reports an answer key outside the question's options.
func InvalidAnswer(key, qid string) *ServiceError {
	return New(CodeInvalidAnswer, fmt.Sprintf("Answer key '%s' not allowed for %s", key, qid), http.StatusBadRequest)
}

// UnsupportedType reports a question type the engine cannot process.
func UnsupportedType(qtype, qid string) *ServiceError {
	return New(CodeUnsupportedType, fmt.Sprintf("Unsupported type '%s' on %s", qtype, qid), http.StatusBadRequest)
}

// DateFormat reports a free-text answer that is not an ISO date.
func DateFormat() *ServiceError {
	return New(CodeDateFormat, "Use YYYY-MM-DD (e.g., 2025-09-01)", http.StatusBadRequest)
}

// BrokenDefinition reports a fault in the questionnaire itself.
func BrokenDefinition(format string, args ...any) *ServiceError {
	return New(CodeBrokenDefinition, fmt.Sprintf(format, args...), http.StatusInternalServerError)
}

// FlowDivergence reports a step answering a question other than the cursor.
func FlowDivergence(expected, got string) *ServiceError {
	return New(CodeFlowDivergence, fmt.Sprintf("Expected '%s', got '%s'", expected, got), http.StatusBadRequest)
}

// UnknownRun reports a run id with no stored run.
func UnknownRun(runID string) *ServiceError {
	return New(CodeUnknownRun, fmt.Sprintf("Run '%s' not found", runID), http.StatusNotFound)
}

// StatusInactive reports an operation on a completed or cancelled run.
func StatusInactive(status string) *ServiceError {
	return New(CodeStatusInactive, fmt.Sprintf("Run is %s", status), http.StatusConflict)
}

// NotFound reports a missing resource other than a run.
func NotFound(message string) *ServiceError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

// InvalidPayload reports a request body that could not be processed.
func InvalidPayload(message string) *ServiceError {
	return New(CodeInvalidPayload, message, http.StatusBadRequest)
}

// RateLimitExceeded reports a throttled client.
func RateLimitExceeded() *ServiceError {
	return New(CodeRateLimitExceeded, "too many requests", http.StatusTooManyRequests)
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(message string) *ServiceError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

// Internal wraps an unexpected failure without leaking its details.
func Internal() *ServiceError {
	return New(CodeInternal, "internal error", http.StatusInternalServerError)
}
