package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a mediation failure. Every kind is caught at the
// mediator boundary and converted to a synthesized result; kinds exist for
// logging and metrics, not for callers.
type ErrorKind string

const (
	// KindAuthentication indicates the credential exchange failed or was rejected.
	KindAuthentication ErrorKind = "authentication"
	// KindQuotaExceeded indicates the local call budget was exhausted.
	KindQuotaExceeded ErrorKind = "quota_exceeded"
	// KindTransport indicates a network failure or timeout.
	KindTransport ErrorKind = "transport"
	// KindMalformedResponse indicates an unexpected upstream payload shape.
	KindMalformedResponse ErrorKind = "malformed_response"
	// KindSerialization indicates cache read/write corruption.
	KindSerialization ErrorKind = "serialization"
)

// MediationError is the base error type for all failures inside the
// mediation layer.
type MediationError struct {
	Kind    ErrorKind
	Message string
	// Err is the underlying cause, kept for logging only.
	Err error
}

func (e *MediationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *MediationError) Unwrap() error {
	return e.Err
}

// NewAuthenticationError creates an authentication error. Callers must treat
// it as fatal for the current operation; it is never downgraded to a stale token.
func NewAuthenticationError(message string, err error) *MediationError {
	return &MediationError{Kind: KindAuthentication, Message: message, Err: err}
}

// NewQuotaExceededError creates a quota error. Internal signal only.
func NewQuotaExceededError(message string) *MediationError {
	return &MediationError{Kind: KindQuotaExceeded, Message: message}
}

// NewTransportError creates a network/timeout error.
func NewTransportError(message string, err error) *MediationError {
	return &MediationError{Kind: KindTransport, Message: message, Err: err}
}

// NewMalformedResponseError creates an error for unexpected payload shapes.
func NewMalformedResponseError(message string, err error) *MediationError {
	return &MediationError{Kind: KindMalformedResponse, Message: message, Err: err}
}

// NewSerializationError creates an error for cache corruption.
func NewSerializationError(message string, err error) *MediationError {
	return &MediationError{Kind: KindSerialization, Message: message, Err: err}
}

// KindOf returns the ErrorKind of err, or KindTransport when err carries no
// classification. Unclassified errors reach the mediator only from the
// network layer, so transport is the conservative bucket.
func KindOf(err error) ErrorKind {
	var me *MediationError
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindTransport
}
