package drive

import "fmt"

// Taxonomy of errors surfaced by drive operations, per the error handling
// design: synchronous validation errors abort before any side effect,
// CryptoFailed on a single ingested event is logged-and-dropped by the
// sync engine but surfaced when raised by a user-initiated operation, and
// NotFound on delete is a no-op rather than an error.

// InvalidArgumentError signals a malformed input: a non-absolute path, a
// malformed share link, bad base64, or a malformed TLV.
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string { return "invalid argument: " + e.Msg }

func NewInvalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// NotLoggedInError signals that no current signer identity is available.
type NotLoggedInError struct{}

func (e *NotLoggedInError) Error() string { return "not logged in" }

func NewNotLoggedIn() error { return &NotLoggedInError{} }

// NotFoundError signals a referenced event id or path is absent.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return "not found: " + e.Msg }

func NewNotFound(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// UnauthorizedError signals an attempt to modify an event not authored by
// the current identity, or a share-recipient mismatch.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string { return "unauthorized: " + e.Msg }

func NewUnauthorized(format string, args ...any) error {
	return &UnauthorizedError{Msg: fmt.Sprintf(format, args...)}
}

// CryptoFailedError signals a GCM tag mismatch, key/nonce length
// violation, NIP-44 decrypt failure, or wrong password for ncryptsec.
type CryptoFailedError struct {
	Msg string
}

func (e *CryptoFailedError) Error() string { return "crypto failed: " + e.Msg }

func NewCryptoFailed(format string, args ...any) error {
	return &CryptoFailedError{Msg: fmt.Sprintf(format, args...)}
}

// NetworkFailedError signals a blob upload/download failure, a relay
// subscribe or publish failure, or a local index read/write failure.
// Non-fatal: local index writes have already succeeded by the time this
// is raised on broadcast.
type NetworkFailedError struct {
	Msg string
	Err error
}

func (e *NetworkFailedError) Error() string {
	if e.Err != nil {
		return "network failed: " + e.Msg + ": " + e.Err.Error()
	}
	return "network failed: " + e.Msg
}

func (e *NetworkFailedError) Unwrap() error { return e.Err }

func NewNetworkFailed(msg string, err error) error {
	return &NetworkFailedError{Msg: msg, Err: err}
}

// ConcurrencyTerminatedError signals an operation invoked after dispose().
type ConcurrencyTerminatedError struct{}

func (e *ConcurrencyTerminatedError) Error() string { return "service has been disposed" }

func NewConcurrencyTerminated() error { return &ConcurrencyTerminatedError{} }
