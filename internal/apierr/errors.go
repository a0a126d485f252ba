// Package apierr defines the closed error taxonomy shared by every
// component of the vault. Handlers and internal components return these
// sentinel values (or one wrapped with extra context via Wrap) instead of
// ad hoc error strings, so callers can switch on Code() reliably.
package apierr

import "fmt"

// Code is a closed set of error classes surfaced across the RPC boundary.
type Code string

const (
	BadInput          Code = "BadInput"
	Unauthorized      Code = "Unauthorized"
	NotFound          Code = "NotFound"
	Conflict          Code = "Conflict"
	Denied            Code = "Denied"
	RateLimited       Code = "RateLimited"
	CryptoFailed      Code = "CryptoFailed"
	StorageUnavailable Code = "StorageUnavailable"
	OracleUnavailable Code = "OracleUnavailable"
	Timeout           Code = "Timeout"
	Inconsistent      Code = "Inconsistent"
	Internal          Code = "Internal"
)

// CryptoReason refines a CryptoFailed error with a sub-cause, per spec.
type CryptoReason string

const (
	AuthFailed CryptoReason = "AuthFailed"
	Malformed  CryptoReason = "Malformed"
	KeyLength  CryptoReason = "KeyLength"
	KdfFailed  CryptoReason = "KdfFailed"
)

// Error is the concrete error type carried across the RPC boundary. It
// never embeds sensitive material (plaintext, CEKs, private keys) in Msg;
// that invariant is enforced by convention at every call site, the same
// way the audit journal enforces it at construction time.
type Error struct {
	Code   Code
	Reason CryptoReason
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason != "" {
		if e.Msg == "" {
			return fmt.Sprintf("%s.%s", e.Code, e.Reason)
		}
		return fmt.Sprintf("%s.%s: %s", e.Code, e.Reason, e.Msg)
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an *Error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Wrap creates an *Error that carries an underlying cause for logging,
// without leaking the cause's text across the RPC boundary implicitly;
// callers decide whether Err.Error() is safe to expose.
func Wrap(code Code, msg string, err error) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

// Crypto creates a CryptoFailed error with the given sub-reason.
func Crypto(reason CryptoReason, msg string) *Error {
	return &Error{Code: CryptoFailed, Reason: reason, Msg: msg}
}

// NoOp is a sentinel (not strictly in the closed taxonomy of externally
// visible codes) returned by idempotent operations, such as revoking an
// actor who was never granted access, to distinguish "nothing to do" from
// any of the above failure classes.
var NoOp = &Error{Code: "NoOp", Msg: "operation was a no-op"}

// Is reports whether err is an *Error of the given code.
func Is(err error, code Code) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
		return e.Code == code
	}
	return false
}
