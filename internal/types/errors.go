package types

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. Handlers use these instead of hardcoded strings so
// the taxonomy in the response envelope stays stable.
const (
	// Classification (400/500) - the inbound event could not be mapped to a
	// known shape, or a matched shape is missing a required field.
	ErrCodeClassifyUnsupported  ErrorCode = "classify_unsupported_event"
	ErrCodeClassifyMissingField ErrorCode = "classify_missing_required_field"
	ErrCodeClassifyBadNumber    ErrorCode = "classify_non_numeric_value"
	ErrCodeUnknownAction        ErrorCode = "interaction_unknown_action"

	// External collaborators (502). Fatal on the primary send path,
	// degraded to sentinel records on the detail-enrichment path.
	ErrCodeSlackPost     ErrorCode = "external_slack_post_failed"
	ErrCodeSlackHistory  ErrorCode = "external_slack_history_failed"
	ErrCodeLogsQuery     ErrorCode = "external_logs_query_failed"
	ErrCodeBatchQuery    ErrorCode = "external_batch_query_failed"
	ErrCodePipelineQuery ErrorCode = "external_pipeline_query_failed"

	// Internal (500)
	ErrCodeInternalRender     ErrorCode = "internal_render_failed"
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// HTTPStatus maps an ErrorCode to the status carried in the response
// envelope. Unrecognized codes map to 500 as a safe default.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case c == ErrCodeUnknownAction:
		return http.StatusBadRequest
	case strings.HasPrefix(s, "classify_"):
		return http.StatusInternalServerError
	case strings.HasPrefix(s, "external_"):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the standard application error type. Domain and handler errors
// are expressed as AppError so the dispatch layer can format a consistent
// failure envelope and map codes to statuses.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
