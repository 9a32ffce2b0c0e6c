package common

import (
	"errors"
	"fmt"
)

// Error codes surfaced in job outcomes and stored in extract_job.error_kind.
const (
	CodeExtraction   = "EXTRACTION_ERROR"
	CodeNoData       = "NO_DATA"
	CodeRender       = "RENDER_ERROR"
	CodeUnexpected   = "UNEXPECTED_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeConfig       = "CONFIG_ERROR"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel registered for the error's code, so callers can
// write errors.Is(err, common.ErrNoData).
func (e *AppError) Is(target error) bool {
	s, ok := sentinels[e.Code]
	return ok && s == target
}

// Common application errors
var (
	ErrExtraction   = errors.New("extraction failed")
	ErrNoData       = errors.New("no data")
	ErrRender       = errors.New("render failed")
	ErrUnexpected   = errors.New("unexpected error")
	ErrInvalidInput = errors.New("invalid input")
	ErrConfig       = errors.New("invalid configuration")

	ErrBusy        = errors.New("a job is already running")
	ErrQueueClosed = errors.New("queue is shutting down")
)

var sentinels = map[string]error{
	CodeExtraction:   ErrExtraction,
	CodeNoData:       ErrNoData,
	CodeRender:       ErrRender,
	CodeUnexpected:   ErrUnexpected,
	CodeInvalidInput: ErrInvalidInput,
	CodeConfig:       ErrConfig,
}

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func ExtractionError(message string, cause error) error {
	return NewAppError(CodeExtraction, message, cause)
}

func NoDataError(message string) error {
	return NewAppError(CodeNoData, message, nil)
}

func RenderError(message string, cause error) error {
	return NewAppError(CodeRender, message, cause)
}

func UnexpectedError(message string, cause error) error {
	return NewAppError(CodeUnexpected, message, cause)
}

func InvalidInputError(message string, cause error) error {
	return NewAppError(CodeInvalidInput, message, cause)
}

func ConfigError(message string, cause error) error {
	return NewAppError(CodeConfig, message, cause)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// KindOf returns the AppError code carried by err, or CodeUnexpected for
// anything that is not an AppError. A nil error has no kind.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnexpected
}
