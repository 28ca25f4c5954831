// Package errors provides error types and sentinels for checksum crawls.
package errors

import (
	"errors"
	"fmt"
)

// Error describes a failed crawl operation together with the bucket and key
// it was operating on.
type Error struct {
	// Op is the operation that failed (e.g., "list", "fetch", "manifest")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key or manifest path (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors. Use errors.Is to test for them.
var (
	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("invalid bucket name")

	// ErrTimeout indicates that the operation timed out
	ErrTimeout = errors.New("operation timeout")

	// ErrConnection indicates a connection error
	ErrConnection = errors.New("connection error")

	// ErrChecksumMismatch indicates that the computed digest differs from the expected one
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrHashLength indicates a manifest hash whose length does not match the algorithm
	ErrHashLength = errors.New("hash length in file does not match algorithm")

	// ErrTruncatedBody indicates that an object stream ended before its advertised length
	ErrTruncatedBody = errors.New("object body truncated")

	// ErrUnsupportedAlgorithm indicates an unknown hash algorithm name
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

	// ErrManifestOpen indicates the verification manifest could not be opened
	ErrManifestOpen = errors.New("cannot open manifest")

	// ErrRunFailed indicates a run finished with a non-empty error ledger
	ErrRunFailed = errors.New("checksum run reported errors")
)

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsHashLength checks if an error is a manifest hash length violation.
func IsHashLength(err error) bool {
	return errors.Is(err, ErrHashLength)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
