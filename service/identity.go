package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/codelily98/codelily/db"
	"github.com/codelily98/codelily/models"
)

// Profile is the normalized identity extracted from an OAuth2 provider's
// user-info attributes. It is all the core ever sees of the provider.
type Profile struct {
	Provider      models.AuthProvider
	ProviderID    string
	Nickname      string
	Email         string
	AvatarURL     string
	EmailVerified bool
}

// ErrUnknownProvider is returned for providers this service does not support
var ErrUnknownProvider = errors.New("unsupported oauth2 provider")

// NormalizeProfile maps raw provider attributes onto a Profile, one parser
// per known provider
func NormalizeProfile(provider models.AuthProvider, attrs map[string]any) (Profile, error) {
	switch provider {
	case models.ProviderGoogle:
		return normalizeGoogle(attrs), nil
	case models.ProviderKakao:
		return normalizeKakao(attrs), nil
	default:
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

func normalizeGoogle(attrs map[string]any) Profile {
	return Profile{
		Provider:      models.ProviderGoogle,
		ProviderID:    stringAttr(attrs, "sub"),
		Nickname:      stringAttrOr(attrs, "name", "GoogleUser"),
		Email:         stringAttr(attrs, "email"),
		AvatarURL:     stringAttr(attrs, "picture"),
		EmailVerified: boolAttr(attrs, "email_verified"),
	}
}

func normalizeKakao(attrs map[string]any) Profile {
	id := stringAttr(attrs, "id")
	if id == "" {
		// kakao delivers the id as a number
		if n, ok := attrs["id"].(float64); ok {
			id = fmt.Sprintf("%.0f", n)
		}
	}

	account := mapAttr(attrs, "kakao_account")
	profile := mapAttr(account, "profile")

	return Profile{
		Provider:      models.ProviderKakao,
		ProviderID:    id,
		Nickname:      stringAttrOr(profile, "nickname", "KakaoUser"),
		Email:         stringAttr(account, "email"),
		AvatarURL:     stringAttr(profile, "profile_image_url"),
		EmailVerified: boolAttr(account, "is_email_verified"),
	}
}

func stringAttr(attrs map[string]any, key string) string {
	s, _ := attrs[key].(string)
	return s
}

func stringAttrOr(attrs map[string]any, key, fallback string) string {
	if s := stringAttr(attrs, key); s != "" {
		return s
	}
	return fallback
}

func boolAttr(attrs map[string]any, key string) bool {
	b, _ := attrs[key].(bool)
	return b
}

func mapAttr(attrs map[string]any, key string) map[string]any {
	m, _ := attrs[key].(map[string]any)
	return m
}

// IdentityService resolves normalized provider profiles into internal user
// records, creating them on first sight
type IdentityService struct {
	db db.Database
}

// NewIdentityService creates a new IdentityService instance
func NewIdentityService(db db.Database) *IdentityService {
	return &IdentityService{db: db}
}

// Resolve finds the user for the profile by (provider, providerID),
// falling back to email, and creates a fresh USER-role account when
// neither matches
func (s *IdentityService) Resolve(ctx context.Context, profile Profile) (models.User, error) {
	user, err := s.db.FindByProvider(ctx, profile.Provider, profile.ProviderID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return models.User{}, err
	}

	// Only a provider-verified email may bind to an existing account;
	// an unverified address would let a forged profile take it over
	if profile.Email != "" && profile.EmailVerified {
		user, err = s.db.FindByEmail(ctx, profile.Email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return models.User{}, err
		}
	}

	user, err = s.db.CreateUser(ctx, db.CreateUser{
		Email:         profile.Email,
		Nickname:      profile.Nickname,
		AvatarURL:     profile.AvatarURL,
		Role:          models.RoleUser,
		Provider:      profile.Provider,
		ProviderID:    profile.ProviderID,
		EmailVerified: profile.EmailVerified,
	})
	if err != nil {
		slog.Error("failed to create user for oauth2 profile", "error", err, "provider", profile.Provider)
		return models.User{}, err
	}

	slog.Info("new user created from oauth2 profile", "user_id", user.ID.String(), "provider", profile.Provider)
	return user, nil
}
