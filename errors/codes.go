package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Sequence lifecycle errors
const (
	// ErrCodeSequenceReuse indicates a pull or terminal on an already consumed,
	// linked or closed stream.
	ErrCodeSequenceReuse ErrorCode = "SEQUENCE_REUSE"
	// ErrCodeResource indicates the underlying resource failed to open, read or
	// release, or was pulled after release.
	ErrCodeResource ErrorCode = "RESOURCE"
)

// Element errors
const (
	// ErrCodeParse indicates a caller-supplied transform could not convert an element.
	ErrCodeParse ErrorCode = "PARSE"
	// ErrCodeDuplicateKey indicates a keyed-map collision with no merge function.
	ErrCodeDuplicateKey ErrorCode = "DUPLICATE_KEY"
	// ErrCodeEmptyResult indicates a present result was required from an empty sequence.
	ErrCodeEmptyResult ErrorCode = "EMPTY_RESULT"
)

// Generic errors
const (
	// ErrCodeInvalidInput indicates an argument or configuration value is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an unexpected failure inside the engine.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeResource: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// Only resource failures are retryable, and only by re-opening the resource
// and building a fresh stream.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
