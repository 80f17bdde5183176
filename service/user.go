package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/codelily98/codelily/db"
	"github.com/codelily98/codelily/forms"
	"github.com/codelily98/codelily/models"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	db db.Database
}

func NewUserService(db db.Database) *UserService {
	return &UserService{db: db}
}

// Register creates a local account. Email and nickname must both be unused.
func (s *UserService) Register(ctx context.Context, form forms.RegisterForm) (user models.User, err error) {
	exists, err := s.db.EmailExists(ctx, form.Email)
	if err != nil {
		slog.Error("failed to check if email exists", "error", err)
		return user, errors.New("something went wrong, please try again later")
	}
	if exists {
		return user, ErrEmailTaken
	}

	taken, err := s.db.NicknameExists(ctx, form.Nickname)
	if err != nil {
		slog.Error("failed to check if nickname exists", "error", err)
		return user, errors.New("something went wrong, please try again later")
	}
	if taken {
		return user, ErrNicknameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		return user, errors.New("something went wrong, please try again later")
	}

	user, err = s.db.CreateUser(ctx, db.CreateUser{
		Email:    form.Email,
		PwdHash:  string(hashedPassword),
		Nickname: form.Nickname,
		Role:     models.RoleUser,
		Provider: models.ProviderLocal,
	})
	if err != nil {
		return user, errors.New("something went wrong, please try again later")
	}

	return user, nil
}

// One fetches a single user by ID
func (s *UserService) One(ctx context.Context, userID models.UserID) (models.User, error) {
	user, err := s.db.GetUser(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return user, ErrUserNotFound
	}
	return user, err
}

// NicknameTaken reports whether a nickname is already in use
func (s *UserService) NicknameTaken(ctx context.Context, nickname string) (bool, error) {
	return s.db.NicknameExists(ctx, nickname)
}

// UpdateProfile changes the user's nickname and avatar
func (s *UserService) UpdateProfile(ctx context.Context, userID models.UserID, nickname, avatarURL string) (models.User, error) {
	current, err := s.db.GetUser(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	if nickname != current.Nickname {
		taken, err := s.db.NicknameExists(ctx, nickname)
		if err != nil {
			return models.User{}, err
		}
		if taken {
			return models.User{}, ErrNicknameTaken
		}
	}

	return s.db.UpdateProfile(ctx, userID, nickname, avatarURL)
}
