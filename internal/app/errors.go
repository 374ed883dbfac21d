package app

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound indicates a referenced user ID does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrReportNotFound indicates a referenced report ID does not resolve.
	ErrReportNotFound = errors.New("report not found")
	// ErrUserExists indicates a registration ID is already taken.
	ErrUserExists = errors.New("user id already exists")
	// ErrInvalidCredential indicates a login password mismatch.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrAudioRequired indicates a missing or unreadable audio payload.
	ErrAudioRequired = errors.New("audio file is required")
)

// UpstreamError wraps a failed analysis service interaction: transport
// error, non-success status, or a response violating the schema. Existence
// failures never produce one; they are raised before any upstream call.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("analysis service: %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Err: err}
}
