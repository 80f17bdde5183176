package db

import (
	"context"
	"errors"

	"github.com/codelily98/codelily/models"
)

// ErrNotFound is returned when the requested record does not exist
var ErrNotFound = errors.New("db: record not found")

// Database is the persistence boundary for users and posts
type Database interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	NicknameExists(ctx context.Context, nickname string) (bool, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByProvider(ctx context.Context, provider models.AuthProvider, providerID string) (models.User, error)

	GetUser(ctx context.Context, id models.UserID) (models.User, error)
	CreateUser(ctx context.Context, user CreateUser) (models.User, error)
	UpdateProfile(ctx context.Context, id models.UserID, nickname, avatarURL string) (models.User, error)
	TouchLastLogin(ctx context.Context, id models.UserID) error

	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	TopPosts(ctx context.Context, limit int) ([]models.Post, error)
	UpdatePost(ctx context.Context, slug string, post models.Post) (models.Post, error)
	DeletePost(ctx context.Context, slug string) error
	IncrementViews(ctx context.Context, slug string) error
}

// CreateUser carries the fields needed to insert a new user record
type CreateUser struct {
	Email         string
	PwdHash       string
	Nickname      string
	AvatarURL     string
	Role          models.Role
	Provider      models.AuthProvider
	ProviderID    string
	EmailVerified bool
}
