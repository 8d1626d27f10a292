package bwtree

import "fmt"

// ErrCode classifies the outcome of a failed index operation, mirroring
// lib/store's RetCode convention of a small closed enum plus a message
// rather than ad hoc error strings.
type ErrCode uint64

const (
	// ErrCodeSuccess is never actually returned (a nil error means
	// success) but is kept for parity with the zero value being
	// meaningful, as in lib/store.RetCSuccess.
	ErrCodeSuccess ErrCode = iota
	// ErrCodeDuplicateKey: Insert on a unique-mode index whose key already
	// has a live value.
	ErrCodeDuplicateKey
	// ErrCodeNotFound: Delete of a (key, value) pair that is not present.
	ErrCodeNotFound
	// ErrCodeClosed: an operation was attempted after Close.
	ErrCodeClosed
	// ErrCodeCorruption: an internal invariant was violated. This
	// indicates a bug in the index itself, not a caller mistake.
	ErrCodeCorruption
)

func (c ErrCode) String() string {
	switch c {
	case ErrCodeDuplicateKey:
		return "DuplicateKey"
	case ErrCodeNotFound:
		return "NotFound"
	case ErrCodeClosed:
		return "Closed"
	case ErrCodeCorruption:
		return "Corruption"
	default:
		return "Success"
	}
}

// Error is the index's error type: a code plus a human-readable message.
// Package-level sentinels (ErrDuplicateKey, ErrNotFound) support
// errors.Is comparisons by code.
type Error struct {
	Code ErrCode
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("bwtree: %s: %s", e.Code, e.Msg)
}

// Is allows errors.Is(err, bwtree.ErrNotFound) to match any *Error sharing
// the same code, not just the exact sentinel value.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

func newError(code ErrCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

var (
	ErrDuplicateKey = newError(ErrCodeDuplicateKey, "key already present")
	ErrNotFound     = newError(ErrCodeNotFound, "value not found for key")
	ErrClosed       = newError(ErrCodeClosed, "index is closed")
)
