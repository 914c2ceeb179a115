// Package apperr defines the error taxonomy shared by the remote clients and
// the HTTP layer.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies an error so the HTTP layer can map it to a status code.
type Kind string

const (
	KindConfiguration      Kind = "CONFIGURATION_ERROR"
	KindValidation         Kind = "VALIDATION_ERROR"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindNotFound           Kind = "NOT_FOUND"
	KindRemote             Kind = "REMOTE_ERROR"
	KindTimeout            Kind = "TIMEOUT"
	KindConnection         Kind = "CONNECTION_ERROR"
	KindMalformedResponse  Kind = "MALFORMED_RESPONSE"
)

// Error is the error type returned across every component boundary.
type Error struct {
	Kind    Kind
	Message string
	// Status is the upstream HTTP status, zero when no response was received.
	Status int
	Err    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigurationError reports missing credentials or endpoints.
func NewConfigurationError(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

// NewValidationError reports input rejected before any network call.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewInvalidCredentialsError(msg string) *Error {
	return &Error{Kind: KindInvalidCredentials, Message: msg, Status: 401}
}

func NewNotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// NewRemoteError reports a non-success answer from a remote service.
func NewRemoteError(status int, msg string) *Error {
	return &Error{Kind: KindRemote, Message: msg, Status: status}
}

func NewTimeoutError(msg string, err error) *Error {
	return &Error{Kind: KindTimeout, Message: msg, Err: err}
}

func NewConnectionError(msg string, err error) *Error {
	return &Error{Kind: KindConnection, Message: msg, Err: err}
}

func NewMalformedResponseError(msg string, err error) *Error {
	return &Error{Kind: KindMalformedResponse, Message: msg, Err: err}
}

// Wrap prefixes the message of an *Error and keeps its kind. Other errors
// become a RemoteError.
func Wrap(err error, prefix string) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return &Error{
			Kind:    appErr.Kind,
			Message: fmt.Sprintf("%s: %s", prefix, appErr.Message),
			Status:  appErr.Status,
			Err:     appErr,
		}
	}
	return &Error{Kind: KindRemote, Message: fmt.Sprintf("%s: %v", prefix, err), Err: err}
}

// KindOf returns the kind of err, or the empty kind if err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromTransport classifies an http.Client failure as Timeout or ConnectionError.
func FromTransport(ctx context.Context, err error, timeoutMsg, connMsg string) *Error {
	if isTimeout(ctx, err) {
		return NewTimeoutError(timeoutMsg, err)
	}
	return NewConnectionError(connMsg, err)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
