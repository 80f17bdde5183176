package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codelily98/codelily/db"
	"github.com/codelily98/codelily/kv"
	"github.com/codelily98/codelily/models"
	"golang.org/x/crypto/bcrypt"
)

// Key prefixes in the shared store. "rt:" maps a user to the single live
// refresh token; "bl:" marks a revoked access token id until its natural
// expiry.
const (
	refreshKeyPrefix   = "rt:"
	blacklistKeyPrefix = "bl:"
)

// defaultStoreTimeout bounds every round trip to the key-value store
const defaultStoreTimeout = 3 * time.Second

// AuthService implements the session lifecycle: login, refresh rotation
// with replay detection, and logout with access-token revocation. The
// key-value store is the single source of truth shared by all instances;
// no client-side locks are taken.
type AuthService struct {
	codec *TokenCodec
	kv    kv.KeyValueStore
	db    db.Database

	storeTimeout time.Duration
}

// NewAuthService creates a new AuthService instance over the provided
// token codec, key-value store and user database
func NewAuthService(codec *TokenCodec, kv kv.KeyValueStore, db db.Database) *AuthService {
	return &AuthService{
		codec:        codec,
		kv:           kv,
		db:           db,
		storeTimeout: defaultStoreTimeout,
	}
}

func refreshKey(userID models.UserID) string { return refreshKeyPrefix + userID.String() }
func blacklistKey(id string) string          { return blacklistKeyPrefix + id }

// storeCtx derives a bounded context for a single store round trip
func (s *AuthService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

// Login verifies the email/password pair and issues a fresh token pair.
// Unknown email and wrong password both fail with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, *models.TokenDetails, error) {
	user, err := s.db.FindByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return models.User{}, nil, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, nil, err
	}

	// Social-login accounts have no password hash and cannot log in locally
	if user.Password == "" {
		return models.User{}, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, nil, ErrInvalidCredentials
	}

	td, err := s.IssueFor(ctx, user)
	if err != nil {
		return models.User{}, nil, err
	}

	if err := s.db.TouchLastLogin(ctx, user.ID); err != nil {
		slog.Warn("failed to update last login time", "error", err, "user_id", user.ID.String())
	}

	return user, td, nil
}

// IssueFor mints an access/refresh token pair for an already authenticated
// user and stores the refresh token as the single live one, replacing any
// previous session. Shared by login and the OAuth2 callback path.
func (s *AuthService) IssueFor(ctx context.Context, user models.User) (*models.TokenDetails, error) {
	access, jti, atExp, err := s.codec.IssueAccess(user.ID, user.Role)
	if err != nil {
		slog.Error("failed to create access token", "error", err, "user_id", user.ID.String())
		return nil, err
	}

	refresh, rtExp, err := s.codec.IssueRefresh(user.ID)
	if err != nil {
		slog.Error("failed to create refresh token", "error", err, "user_id", user.ID.String())
		return nil, err
	}

	if err := s.putRefresh(ctx, user.ID, refresh, time.Until(rtExp)); err != nil {
		return nil, err
	}

	return &models.TokenDetails{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessID:     jti,
		AtExpires:    atExp,
		RtExpires:    rtExp,
	}, nil
}

// Refresh rotates the token pair. The presented token must pass structural
// and expiry checks (ErrInvalidRefresh, no store lookup) and must be
// byte-equal to the single live token on record (ErrRefreshMismatch
// otherwise). On success the stored token is overwritten: the presented
// one is dead from this point on.
func (s *AuthService) Refresh(ctx context.Context, presented string) (models.User, *models.TokenDetails, error) {
	if presented == "" {
		return models.User{}, nil, ErrInvalidRefresh
	}

	claims, err := s.codec.Verify(presented)
	if err != nil {
		slog.Info("refresh token failed verification", "reason", err)
		return models.User{}, nil, fmt.Errorf("%w: %w", ErrInvalidRefresh, err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return models.User{}, nil, fmt.Errorf("%w: bad subject", ErrInvalidRefresh)
	}

	stored, err := s.getRefresh(ctx, userID)
	if err != nil {
		return models.User{}, nil, err
	}

	// Any divergence from the stored value means the token was already
	// rotated away or a replay is in progress; both are denied
	if stored == "" || stored != presented {
		slog.Warn("refresh token mismatch, possible replay", "user_id", userID.String())
		return models.User{}, nil, ErrRefreshMismatch
	}

	user, err := s.db.GetUser(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return models.User{}, nil, ErrRefreshMismatch
	}
	if err != nil {
		return models.User{}, nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	td, err := s.IssueFor(ctx, user)
	if err != nil {
		return models.User{}, nil, err
	}

	return user, td, nil
}

// Logout revokes the presented credentials: the stored refresh token for
// the refresh token's subject is deleted and the access token id is
// blacklisted until its natural expiry. Absent or invalid credentials are
// skipped; logout never fails the caller.
func (s *AuthService) Logout(ctx context.Context, refreshToken, accessToken string) {
	if refreshToken != "" {
		if userID, err := s.codec.SubjectOf(refreshToken); err == nil {
			if err := s.deleteRefresh(ctx, userID); err != nil {
				slog.Error("failed to delete refresh token on logout", "error", err, "user_id", userID.String())
			}
		}
	}

	if accessToken != "" {
		claims, err := s.codec.Verify(accessToken)
		if err != nil {
			return
		}

		ttl := time.Until(claims.ExpiresAt.Time)
		if ttl < time.Second {
			ttl = time.Second
		}

		// Blacklist by jti; fall back to the raw token if absent
		id := claims.ID
		if id == "" {
			id = accessToken
		}

		if err := s.markRevoked(ctx, id, ttl); err != nil {
			slog.Error("failed to blacklist access token on logout", "error", err, "jti", claims.ID, "user_id", claims.Subject)
		}
	}
}

// IsRevoked reports whether the access token id has been blacklisted. A
// store failure is ErrStoreUnavailable, never "not revoked".
func (s *AuthService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	revoked, err := s.kv.Exists(sctx, blacklistKey(tokenID))
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return revoked, nil
}

func (s *AuthService) putRefresh(ctx context.Context, userID models.UserID, token string, ttl time.Duration) error {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	// Unconditional overwrite: this is the rotation point, last writer wins
	if err := s.kv.Set(sctx, refreshKey(userID), token, ttl); err != nil {
		slog.Error("failed to store refresh token", "error", err, "user_id", userID.String())
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// getRefresh returns the live refresh token for the user, or "" when none
// is on record. Connectivity failures are ErrStoreUnavailable.
func (s *AuthService) getRefresh(ctx context.Context, userID models.UserID) (string, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	stored, err := s.kv.Get(sctx, refreshKey(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return stored, nil
}

func (s *AuthService) deleteRefresh(ctx context.Context, userID models.UserID) error {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.kv.Del(sctx, refreshKey(userID)); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *AuthService) markRevoked(ctx context.Context, tokenID string, ttl time.Duration) error {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.kv.Set(sctx, blacklistKey(tokenID), "1", ttl); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}
