package errors

import (
	"context"
	"errors"
	"net"
)

// ErrorCode classifies a failure. Codes are strings so they read well in
// logs and as metric labels.
type ErrorCode string

const (
	// CodeNotFound indicates a requested object or bucket does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeForbidden indicates the credentials lack permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodeInvalidInput indicates malformed input such as a bad manifest line.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeNetwork indicates a network operation failed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeIntegrity indicates a digest mismatch or truncated body.
	CodeIntegrity ErrorCode = "INTEGRITY"

	// CodeUnknown indicates an unclassified error.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// CodeOf maps err onto an ErrorCode. A nil error yields the empty code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var netErr net.Error
	switch {
	case errors.Is(err, ErrObjectNotFound), errors.Is(err, ErrBucketNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAccessDenied):
		return CodeForbidden
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidBucketName),
		errors.Is(err, ErrHashLength),
		errors.Is(err, ErrUnsupportedAlgorithm):
		return CodeInvalidInput
	case errors.Is(err, ErrChecksumMismatch), errors.Is(err, ErrTruncatedBody):
		return CodeIntegrity
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, ErrConnection), errors.As(err, &netErr):
		return CodeNetwork
	default:
		return CodeUnknown
	}
}
