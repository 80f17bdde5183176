package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/codelily98/codelily/db"
	"github.com/codelily98/codelily/forms"
	"github.com/codelily98/codelily/models"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrSlugTaken    = errors.New("a post with this slug already exists")
	ErrNotAuthor    = errors.New("only the author or an admin can modify this post")
)

type PostService struct {
	db db.Database
}

func NewPostService(db db.Database) *PostService {
	return &PostService{db: db}
}

func (s *PostService) Create(ctx context.Context, author models.Principal, form forms.PostForm) (models.Post, error) {
	if _, err := s.db.GetPostBySlug(ctx, form.Slug); err == nil {
		return models.Post{}, ErrSlugTaken
	} else if !errors.Is(err, db.ErrNotFound) {
		return models.Post{}, err
	}

	return s.db.CreatePost(ctx, models.Post{
		Slug:      form.Slug,
		Title:     form.Title,
		Content:   form.Content,
		Thumbnail: form.Thumbnail,
		Category:  form.Category,
		AuthorID:  author.UserID,
	})
}

// One fetches a post by slug and counts the view. The view counter is best
// effort: a failed increment never fails the read.
func (s *PostService) One(ctx context.Context, slug string) (models.Post, error) {
	post, err := s.db.GetPostBySlug(ctx, slug)
	if errors.Is(err, db.ErrNotFound) {
		return post, ErrPostNotFound
	}
	if err != nil {
		return post, err
	}

	if err := s.db.IncrementViews(ctx, slug); err != nil {
		slog.Warn("failed to increment post views", "error", err, "slug", slug)
	} else {
		post.Views++
	}

	return post, nil
}

func (s *PostService) All(ctx context.Context) ([]models.Post, error) {
	return s.db.ListPosts(ctx)
}

func (s *PostService) Top(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.db.TopPosts(ctx, limit)
}

func (s *PostService) Update(ctx context.Context, caller models.Principal, slug string, form forms.PostForm) (models.Post, error) {
	post, err := s.db.GetPostBySlug(ctx, slug)
	if errors.Is(err, db.ErrNotFound) {
		return models.Post{}, ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, err
	}

	if post.AuthorID != caller.UserID && !caller.IsAdmin() {
		return models.Post{}, ErrNotAuthor
	}

	return s.db.UpdatePost(ctx, slug, models.Post{
		Title:     form.Title,
		Content:   form.Content,
		Thumbnail: form.Thumbnail,
		Category:  form.Category,
	})
}

func (s *PostService) Delete(ctx context.Context, caller models.Principal, slug string) error {
	post, err := s.db.GetPostBySlug(ctx, slug)
	if errors.Is(err, db.ErrNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return err
	}

	if post.AuthorID != caller.UserID && !caller.IsAdmin() {
		return ErrNotAuthor
	}

	return s.db.DeletePost(ctx, slug)
}
