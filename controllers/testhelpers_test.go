package controllers

import (
	"context"
	"sync"
	"time"

	"github.com/codelily98/codelily/db"
	"github.com/codelily98/codelily/kv"
	"github.com/codelily98/codelily/models"
	"github.com/codelily98/codelily/service"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// memKV is a minimal in-memory KeyValueStore for handler tests
type memKV struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

var _ kv.KeyValueStore = (*memKV)(nil)

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Set(ctx context.Context, key, value string, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.data[key]
	if !ok {
		return "", kv.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.data, key)
	return nil
}

func (m *memKV) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.data[key]
	return ok, nil
}

func (m *memKV) failWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// memDB is a minimal in-memory Database for handler tests
type memDB struct {
	mu    sync.Mutex
	users map[string]models.User
	posts map[string]models.Post
}

var _ db.Database = (*memDB)(nil)

func newMemDB() *memDB {
	return &memDB{users: map[string]models.User{}, posts: map[string]models.Post{}}
}

func (m *memDB) addUser(u models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = models.UserID(bson.NewObjectID())
	}
	m.users[u.ID.String()] = u
	return u
}

func (m *memDB) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	if err == db.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *memDB) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func (m *memDB) FindByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, db.ErrNotFound
}

func (m *memDB) FindByProvider(ctx context.Context, provider models.AuthProvider, providerID string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			return u, nil
		}
	}
	return models.User{}, db.ErrNotFound
}

func (m *memDB) GetUser(ctx context.Context, id models.UserID) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id.String()]
	if !ok {
		return models.User{}, db.ErrNotFound
	}
	return u, nil
}

func (m *memDB) CreateUser(ctx context.Context, user db.CreateUser) (models.User, error) {
	return m.addUser(models.User{
		Email:         user.Email,
		Password:      user.PwdHash,
		Nickname:      user.Nickname,
		AvatarURL:     user.AvatarURL,
		Role:          user.Role,
		Provider:      user.Provider,
		ProviderID:    user.ProviderID,
		EmailVerified: user.EmailVerified,
	}), nil
}

func (m *memDB) UpdateProfile(ctx context.Context, id models.UserID, nickname, avatarURL string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id.String()]
	if !ok {
		return models.User{}, db.ErrNotFound
	}
	u.Nickname = nickname
	u.AvatarURL = avatarURL
	m.users[id.String()] = u
	return u, nil
}

func (m *memDB) TouchLastLogin(ctx context.Context, id models.UserID) error { return nil }

func (m *memDB) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post.ID = bson.NewObjectID().Hex()
	m.posts[post.Slug] = post
	return post, nil
}

func (m *memDB) GetPostBySlug(ctx context.Context, slug string) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[slug]
	if !ok {
		return models.Post{}, db.ErrNotFound
	}
	return p, nil
}

func (m *memDB) ListPosts(ctx context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := []models.Post{}
	for _, p := range m.posts {
		posts = append(posts, p)
	}
	return posts, nil
}

func (m *memDB) TopPosts(ctx context.Context, limit int) ([]models.Post, error) {
	return m.ListPosts(ctx)
}

func (m *memDB) UpdatePost(ctx context.Context, slug string, post models.Post) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[slug]
	if !ok {
		return models.Post{}, db.ErrNotFound
	}
	p.Title = post.Title
	p.Content = post.Content
	m.posts[slug] = p
	return p, nil
}

func (m *memDB) DeletePost(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[slug]; !ok {
		return db.ErrNotFound
	}
	delete(m.posts, slug)
	return nil
}

func (m *memDB) IncrementViews(ctx context.Context, slug string) error { return nil }

// testApp wires a full router over in-memory stores, mirroring main.go
type testApp struct {
	router   *gin.Engine
	kv       *memKV
	db       *memDB
	auth     *service.AuthService
	codec    *service.TokenCodec
	identity *service.IdentityService
}

func newTestApp(failClosed bool) *testApp {
	gin.SetMode(gin.TestMode)

	kvStore := newMemKV()
	database := newMemDB()

	codec := service.NewTokenCodec([]byte("test-secret"), 30*time.Minute, 7*24*time.Hour)
	authService := service.NewAuthService(codec, kvStore, database)
	identityService := service.NewIdentityService(database)
	userService := service.NewUserService(database)
	postService := service.NewPostService(database)
	authenticator := service.NewAuthenticator(codec, authService, database)

	r := gin.New()
	r.Use(AuthMiddleware(authenticator, failClosed))

	auth := NewAuthController(authService, identityService, "http://front.example/auth/callback", "gateway-secret", false, int((7 * 24 * time.Hour).Seconds()))
	r.POST("/api/auth/login", auth.Login)
	r.POST("/api/auth/refresh", auth.Refresh)
	r.POST("/api/auth/logout", auth.Logout)
	r.POST("/api/auth/oauth/:provider/callback", auth.OAuthCallback)

	user := NewUserController(userService)
	r.POST("/api/auth/register", user.Register)
	r.GET("/api/users/me", RequireAuth(), user.Me)
	r.GET("/api/users/check-nickname", user.CheckNickname)

	post := NewPostController(postService)
	r.GET("/api/posts", post.List)
	r.POST("/api/posts", RequireAuth(), post.Create)

	return &testApp{
		router:   r,
		kv:       kvStore,
		db:       database,
		auth:     authService,
		codec:    codec,
		identity: identityService,
	}
}
