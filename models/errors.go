package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeTimeout      = "EXTRACT_TIMEOUT"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"

	// Fetch-related codes. These never reach API callers directly; the
	// pipeline degrades to the next stage instead.
	ErrCodeFetchFailed  = "FETCH_FAILED"
	ErrCodeMirrorFailed = "MIRROR_FAILED"

	// Completion provider codes.
	ErrCodeLLMFailure      = "LLM_FAILURE"
	ErrCodeLLMAuthFailure  = "LLM_AUTH_FAILURE"
	ErrCodeLLMRateLimited  = "LLM_RATE_LIMITED"
	ErrCodeLLMUnconfigured = "LLM_UNCONFIGURED"
	ErrCodeLLMEmpty        = "LLM_EMPTY_RESPONSE"
	ErrCodeLLMInvalidJSON  = "LLM_INVALID_JSON"
	ErrCodeLLMNoData       = "LLM_NO_DATA"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// ErrorCode returns the code of the first ScrapeError in err's chain, or
// ErrCodeInternal when there is none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}
