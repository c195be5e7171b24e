// Package errors defines the gateway's error taxonomy. Every per-file
// failure is converted into one of these kinds at the file boundary; only
// WorkspaceFatal is allowed to abort a whole batch.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway error.
type Kind string

const (
	// KindPolicyViolation covers rejections decided before any content
	// read (naming spoof, oversize). Non-retryable.
	KindPolicyViolation Kind = "POLICY_VIOLATION"
	// KindIntegrityFailure covers hashing or read errors. Retryable only
	// if the caller re-submits the same bytes.
	KindIntegrityFailure Kind = "INTEGRITY_FAILURE"
	// KindThreatDetected covers magic-byte, signature and heuristic
	// rejections. The same bytes will always re-trigger, never retried.
	KindThreatDetected Kind = "THREAT_DETECTED"
	// KindProcessingError covers per-file transformation failures.
	KindProcessingError Kind = "PROCESSING_ERROR"
	// KindMergeError covers a corrupt artifact skipped during merge.
	KindMergeError Kind = "MERGE_ERROR"
	// KindWorkspaceFatal covers total inability to access the workspace.
	// This is the only batch-aborting kind.
	KindWorkspaceFatal Kind = "WORKSPACE_FATAL"
)

// GatewayError is a structured error carrying the failure kind, the file it
// is scoped to and a specific, user-actionable reason. Generic messages are
// disallowed by design: constructors require a concrete reason.
type GatewayError struct {
	Kind   Kind   `json:"kind"`
	File   string `json:"file,omitempty"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.File, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// New creates a GatewayError of the given kind.
func New(kind Kind, file, reason string) *GatewayError {
	return &GatewayError{Kind: kind, File: file, Reason: reason}
}

// Wrap creates a GatewayError that preserves the underlying cause.
func Wrap(kind Kind, file, reason string, err error) *GatewayError {
	return &GatewayError{Kind: kind, File: file, Reason: reason, Err: err}
}

// PolicyViolation creates a policy rejection for a file.
func PolicyViolation(file, reason string) *GatewayError {
	return New(KindPolicyViolation, file, reason)
}

// IntegrityFailure creates an integrity failure for a file.
func IntegrityFailure(file, reason string, err error) *GatewayError {
	return Wrap(KindIntegrityFailure, file, reason, err)
}

// ThreatDetected creates a threat rejection naming the matched evidence.
func ThreatDetected(file, reason string) *GatewayError {
	return New(KindThreatDetected, file, reason)
}

// ProcessingError creates an isolated per-file processing failure.
func ProcessingError(file, reason string, err error) *GatewayError {
	return Wrap(KindProcessingError, file, reason, err)
}

// MergeError creates an isolated per-artifact merge failure.
func MergeError(file, reason string, err error) *GatewayError {
	return Wrap(KindMergeError, file, reason, err)
}

// WorkspaceFatal creates a batch-aborting workspace access failure.
func WorkspaceFatal(reason string, err error) *GatewayError {
	return Wrap(KindWorkspaceFatal, "", reason, err)
}

// KindOf returns the Kind of err if it is (or wraps) a GatewayError, or an
// empty Kind otherwise.
func KindOf(err error) Kind {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

// IsFatal reports whether err should abort the whole batch.
func IsFatal(err error) bool {
	return KindOf(err) == KindWorkspaceFatal
}
