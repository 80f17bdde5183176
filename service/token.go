package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/codelily98/codelily/models"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the verified contents of an access or refresh token.
// Refresh tokens have no ID and no role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// UserID decodes the subject claim into a user ID
func (c Claims) UserID() (models.UserID, error) {
	return models.ParseUserID(c.Subject)
}

// TokenCodec signs and verifies access and refresh tokens with a single
// shared HMAC secret. It is pure: no I/O beyond randomness for the jti.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	// now is swapped out in tests
	now func() time.Time
}

// NewTokenCodec creates a codec with the given signing secret and token
// lifetimes. Zero durations fall back to 30 minutes / 7 days.
func NewTokenCodec(secret []byte, accessTTL, refreshTTL time.Duration) *TokenCodec {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &TokenCodec{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessTTL returns the configured access token lifetime
func (c *TokenCodec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime
func (c *TokenCodec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess signs a new access token for the user with a fresh random
// token id and returns the encoded token, its id and its expiry
func (c *TokenCodec) IssueAccess(userID models.UserID, role models.Role) (token, jti string, exp time.Time, err error) {
	now := c.now()
	exp = now.Add(c.accessTTL)
	jti = uuid.New().String()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: string(role),
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}

	return token, jti, exp, nil
}

// IssueRefresh signs a new refresh token for the user. Refresh tokens
// carry no token id: the single live token per user is tracked externally.
func (c *TokenCodec) IssueRefresh(userID models.UserID) (token string, exp time.Time, err error) {
	now := c.now()
	exp = now.Add(c.refreshTTL)

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, exp, nil
}

// Verify checks signature integrity and expiry of an encoded token and
// returns its claims. Failures map onto exactly one of ErrTokenMalformed,
// ErrTokenSignature or ErrTokenExpired.
func (c *TokenCodec) Verify(encoded string) (Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(encoded, &claims, func(t *jwt.Token) (interface{}, error) {
		// Make sure that the token method conforms to "SigningMethodHMAC"
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())

	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, fmt.Errorf("%w: %w", ErrTokenSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, fmt.Errorf("%w: %w", ErrTokenExpired, err)
	default:
		return Claims{}, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
}

// SubjectOf returns the user ID embedded in a verified token
func (c *TokenCodec) SubjectOf(encoded string) (models.UserID, error) {
	claims, err := c.Verify(encoded)
	if err != nil {
		return models.UserID{}, err
	}
	return claims.UserID()
}

// TokenIDOf returns the unique token id (jti) of a verified access token.
// Refresh tokens have no id and yield an empty string.
func (c *TokenCodec) TokenIDOf(encoded string) (string, error) {
	claims, err := c.Verify(encoded)
	if err != nil {
		return "", err
	}
	return claims.ID, nil
}

// ExpiryOf returns the expiration time of a verified token
func (c *TokenCodec) ExpiryOf(encoded string) (time.Time, error) {
	claims, err := c.Verify(encoded)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}
