package db

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/codelily98/codelily/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// verify MongoDB implements database interface in compile time
var _ Database = (*MongoDB)(nil)

const (
	USER_COLL = "users"
	POST_COLL = "posts"
)

type MongoDB struct {
	client *mongo.Client
	db     string
}

// NewMongoDB connects to the mongo instance at conn and returns a Database
// backed by the named database
func NewMongoDB(conn string, db string) (*MongoDB, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(conn))
	if err != nil {
		return nil, err
	}

	return &MongoDB{client: client, db: db}, nil
}

func (m *MongoDB) users() *mongo.Collection {
	return m.client.Database(m.db).Collection(USER_COLL)
}

func (m *MongoDB) posts() *mongo.Collection {
	return m.client.Database(m.db).Collection(POST_COLL)
}

func (m *MongoDB) CreateUser(ctx context.Context, user CreateUser) (models.User, error) {
	now := time.Now().Unix()
	dbuser := models.User{
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,

		Email:    strings.ToLower(strings.TrimSpace(user.Email)),
		Password: user.PwdHash,

		Nickname:  user.Nickname,
		AvatarURL: user.AvatarURL,
		Role:      user.Role,

		Provider:      user.Provider,
		ProviderID:    user.ProviderID,
		EmailVerified: user.EmailVerified,
	}
	dbuser.ID = models.UserID(bson.NewObjectID())

	_, err := m.users().InsertOne(ctx, dbuser)
	if err != nil {
		slog.Error("failed to insert user into database", "error", err)
		return models.User{}, err
	}

	slog.Debug("database user created", "user_id", dbuser.ID.String())
	return dbuser, nil
}

func (m *MongoDB) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (m *MongoDB) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	err := m.users().FindOne(ctx, bson.D{{Key: "nickname", Value: nickname}}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (m *MongoDB) FindByEmail(ctx context.Context, email string) (user models.User, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	err = m.users().FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, ErrNotFound
	}
	return user, err
}

func (m *MongoDB) FindByProvider(ctx context.Context, provider models.AuthProvider, providerID string) (user models.User, err error) {
	err = m.users().FindOne(ctx, bson.D{
		{Key: "provider", Value: provider},
		{Key: "provider_id", Value: providerID},
	}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, ErrNotFound
	}
	return user, err
}

func (m *MongoDB) GetUser(ctx context.Context, id models.UserID) (user models.User, err error) {
	err = m.users().FindOne(ctx, bson.D{{Key: "_id", Value: bson.ObjectID(id)}}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, ErrNotFound
	}
	return user, err
}

func (m *MongoDB) UpdateProfile(ctx context.Context, id models.UserID, nickname, avatarURL string) (models.User, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "nickname", Value: nickname},
		{Key: "avatar_url", Value: avatarURL},
		{Key: "updated_at", Value: time.Now().Unix()},
	}}}

	var user models.User
	err := m.users().FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: bson.ObjectID(id)}}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, ErrNotFound
	}
	return user, err
}

func (m *MongoDB) TouchLastLogin(ctx context.Context, id models.UserID) error {
	_, err := m.users().UpdateOne(ctx,
		bson.D{{Key: "_id", Value: bson.ObjectID(id)}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "last_login_at", Value: time.Now().Unix()}}}},
	)
	return err
}

func (m *MongoDB) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	now := time.Now().Unix()
	post.ID = bson.NewObjectID().Hex()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Views = 0

	if _, err := m.posts().InsertOne(ctx, post); err != nil {
		slog.Error("failed to insert post into database", "error", err, "slug", post.Slug)
		return models.Post{}, err
	}

	return post, nil
}

func (m *MongoDB) GetPostBySlug(ctx context.Context, slug string) (post models.Post, err error) {
	err = m.posts().FindOne(ctx, bson.D{{Key: "slug", Value: slug}}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return post, ErrNotFound
	}
	return post, err
}

func (m *MongoDB) ListPosts(ctx context.Context) ([]models.Post, error) {
	cur, err := m.posts().Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}

	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (m *MongoDB) TopPosts(ctx context.Context, limit int) ([]models.Post, error) {
	cur, err := m.posts().Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "views", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}

	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (m *MongoDB) UpdatePost(ctx context.Context, slug string, post models.Post) (models.Post, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: post.Title},
		{Key: "content", Value: post.Content},
		{Key: "thumbnail_url", Value: post.Thumbnail},
		{Key: "category", Value: post.Category},
		{Key: "updated_at", Value: time.Now().Unix()},
	}}}

	var updated models.Post
	err := m.posts().FindOneAndUpdate(ctx,
		bson.D{{Key: "slug", Value: slug}}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return updated, ErrNotFound
	}
	return updated, err
}

func (m *MongoDB) DeletePost(ctx context.Context, slug string) error {
	res, err := m.posts().DeleteOne(ctx, bson.D{{Key: "slug", Value: slug}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoDB) IncrementViews(ctx context.Context, slug string) error {
	_, err := m.posts().UpdateOne(ctx,
		bson.D{{Key: "slug", Value: slug}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}},
	)
	return err
}
