// Package common defines shared constants and sentinel errors used across
// hhvault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound        = errors.New("not found")
	ErrIndexOutOfRange = errors.New("record index out of range")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation error")

	// Identity resolution errors. Each failed attempt is terminal: the caller
	// surfaces the message and the user re-initiates the whole operation.
	ErrNotRegistered      = errors.New("no registered identity for this number")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrWalletMismatch     = errors.New("connected wallet does not match registered wallet")

	// Signer / transport errors.
	ErrWalletUnavailable   = errors.New("no signing wallet available")
	ErrTransactionRejected = errors.New("transaction rejected")
	ErrUpload              = errors.New("blob upload failed")

	// Session token errors.
	ErrInvalidToken   = errors.New("invalid session token")
	ErrSessionExpired = errors.New("session expired")
)
