package auth

import "errors"

var (
	// ErrInvalidCode covers every redemption failure: wrong, expired or already used.
	ErrInvalidCode = errors.New("invalid or expired code")
	// ErrAccountNotFound means a redeemed code or a session points at no account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidCredential means a session token failed signature or expiry checks.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrStoreUnavailable wraps infrastructure failures; callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidRequest flags missing identity fields on a code request.
	ErrInvalidRequest = errors.New("invalid request")
)
