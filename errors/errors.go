package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Constructors ---

// SequenceReuse reports a second use of a single-pass stream.
// state is what happened to the stream first: "consumed", "linked" or "closed".
func SequenceReuse(state string) *AppError {
	return &AppError{
		Code:    ErrCodeSequenceReuse,
		Message: fmt.Sprintf("stream has already been %s", state),
		Details: map[string]any{"state": state},
	}
}

// Resource reports an open, read or release failure of a bound resource.
func Resource(op string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeResource, Message: fmt.Sprintf("resource %s failed", op),
		Retryable: true, Details: map[string]any{"op": op}, Cause: cause,
	}
}

// ResourceReleased reports a pull attempted after the bound resource was released.
func ResourceReleased() *AppError {
	return &AppError{
		Code: ErrCodeResource, Message: "resource already released",
		Details: map[string]any{"op": "read"},
	}
}

// Parse reports an element that a transform could not convert.
func Parse(input, target string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeParse, Message: fmt.Sprintf("cannot parse %q as %s", input, target),
		Details: map[string]any{"input": input, "target": target}, Cause: cause,
	}
}

// DuplicateKey reports a keyed-map collision with no merge function supplied.
func DuplicateKey(key any) *AppError {
	return &AppError{
		Code: ErrCodeDuplicateKey, Message: fmt.Sprintf("duplicate key %v", key),
		Details: map[string]any{"key": key},
	}
}

// EmptyResult reports that op needed a present value but the sequence was empty.
func EmptyResult(op string) *AppError {
	return &AppError{
		Code: ErrCodeEmptyResult, Message: fmt.Sprintf("%s on empty sequence", op),
		Details: map[string]any{"operation": op},
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Internal creates a new AppError for an unexpected engine failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Cause: cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether any AppError in err's chain carries code.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// IsRetryable returns true if err is an AppError marked retryable.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}
