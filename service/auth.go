package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/codelily98/codelily/db"
	"github.com/codelily98/codelily/models"
)

// OutcomeKind classifies the result of a per-request authentication pass
type OutcomeKind int

const (
	// Unauthenticated means no usable credential was presented; the
	// request proceeds and downstream authorization decides
	Unauthenticated OutcomeKind = iota
	// Authenticated means a principal was established
	Authenticated
	// StoreError means the revocation store or user database could not
	// be reached; the caller applies the configured outage policy
	StoreError
)

// Outcome is the explicit result of one authentication pass. Principal is
// only meaningful for Authenticated, Err only for StoreError.
type Outcome struct {
	Kind      OutcomeKind
	Principal models.Principal
	Err       error
}

func unauthenticated() Outcome     { return Outcome{Kind: Unauthenticated} }
func storeError(err error) Outcome { return Outcome{Kind: StoreError, Err: err} }
func principal(p models.Principal) Outcome {
	return Outcome{Kind: Authenticated, Principal: p}
}

// Authenticator is the per-request gate: it turns an Authorization header
// into an Outcome without ever aborting the request itself
type Authenticator struct {
	codec    *TokenCodec
	sessions *AuthService
	db       db.Database
}

// NewAuthenticator creates a new request authenticator
func NewAuthenticator(codec *TokenCodec, sessions *AuthService, db db.Database) *Authenticator {
	return &Authenticator{codec: codec, sessions: sessions, db: db}
}

// ExtractBearer returns the token from an "Authorization: Bearer <token>"
// header value, or "" when the header does not carry one
func ExtractBearer(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Authenticate runs the gate once: extract bearer token, verify, check the
// revocation blacklist, load the user and build a principal. Verification
// failures of any kind leave the request unauthenticated; only store
// connectivity failures surface as StoreError.
func (a *Authenticator) Authenticate(ctx context.Context, authorization string) Outcome {
	token := ExtractBearer(authorization)
	if token == "" {
		return unauthenticated()
	}

	claims, err := a.codec.Verify(token)
	if err != nil {
		slog.Debug("bearer token rejected", "reason", err)
		return unauthenticated()
	}

	// Blacklist by jti; raw token when the jti claim is absent
	id := claims.ID
	if id == "" {
		id = token
	}

	revoked, err := a.sessions.IsRevoked(ctx, id)
	if err != nil {
		slog.Error("revocation check failed", "error", err, "jti", claims.ID)
		return storeError(err)
	}
	if revoked {
		slog.Info("revoked access token presented", "jti", claims.ID, "user_id", claims.Subject)
		return unauthenticated()
	}

	userID, err := claims.UserID()
	if err != nil {
		slog.Debug("bearer token has malformed subject", "subject", claims.Subject)
		return unauthenticated()
	}

	user, err := a.db.GetUser(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		slog.Info("access token subject no longer exists", "user_id", userID.String())
		return unauthenticated()
	}
	if err != nil {
		slog.Error("failed to load user for access token", "error", err, "user_id", userID.String())
		return storeError(err)
	}

	return principal(models.Principal{
		UserID:   user.ID,
		Role:     user.Role,
		Nickname: user.Nickname,
	})
}
