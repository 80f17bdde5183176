package service

import "errors"

// Credential verification failures. All three mean "not authenticated";
// callers may log them differently but must not expose the distinction.
var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenSignature = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token is expired")
)

// Session workflow failures.
var (
	// ErrInvalidCredentials covers both unknown email and password
	// mismatch so that login responses cannot enumerate accounts
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidRefresh means the presented refresh token failed
	// structural or expiry checks; no store lookup has happened
	ErrInvalidRefresh = errors.New("refresh token is invalid")
	// ErrRefreshMismatch means the presented refresh token is well-formed
	// but is not the single live token on record: either rotation already
	// happened or a stolen token is being replayed
	ErrRefreshMismatch = errors.New("refresh token is stale or revoked")
)

// ErrStoreUnavailable wraps a key-value store connectivity failure. It is
// never folded into "absent" or "not revoked": login and refresh fail
// closed on it, and the request gate applies its configured outage policy.
var ErrStoreUnavailable = errors.New("token store unavailable")

var (
	ErrEmailTaken    = errors.New("email already exists")
	ErrNicknameTaken = errors.New("nickname already exists")
	ErrUserNotFound  = errors.New("user not found")
)
