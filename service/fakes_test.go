package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/codelily98/codelily/db"
	"github.com/codelily98/codelily/kv"
	"github.com/codelily98/codelily/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// fakeKV is an in-memory KeyValueStore with TTL support, call counters and
// injectable connectivity failures
type fakeKV struct {
	mu   sync.Mutex
	data map[string]fakeEntry

	calls int
	err   error
}

type fakeEntry struct {
	value string
	ttl   time.Duration
	exp   time.Time
}

var _ kv.KeyValueStore = (*fakeKV)(nil)

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]fakeEntry{}}
}

func (f *fakeKV) Set(ctx context.Context, key, value string, exp time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.data[key] = fakeEntry{value: value, ttl: exp, exp: time.Now().Add(exp)}
	return nil
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	e, ok := f.data[key]
	if !ok || time.Now().After(e.exp) {
		return "", kv.ErrNotFound
	}
	return e.value, nil
}

func (f *fakeKV) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	delete(f.data, key)
	return nil
}

func (f *fakeKV) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	e, ok := f.data[key]
	return ok && time.Now().Before(e.exp), nil
}

func (f *fakeKV) entry(key string) (fakeEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.data[key]
	return e, ok
}

func (f *fakeKV) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeKV) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// fakeDB is an in-memory Database holding users and posts
type fakeDB struct {
	mu    sync.Mutex
	users map[string]models.User // keyed by hex id
	posts map[string]models.Post // keyed by slug

	err error
}

var _ db.Database = (*fakeDB)(nil)

func newFakeDB() *fakeDB {
	return &fakeDB{
		users: map[string]models.User{},
		posts: map[string]models.Post{},
	}
}

func (f *fakeDB) addUser(u models.User) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = models.UserID(bson.NewObjectID())
	}
	f.users[u.ID.String()] = u
	return u
}

func (f *fakeDB) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeDB) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeDB) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, u := range f.users {
		if u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) FindByEmail(ctx context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.User{}, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, db.ErrNotFound
}

func (f *fakeDB) FindByProvider(ctx context.Context, provider models.AuthProvider, providerID string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.User{}, f.err
	}
	for _, u := range f.users {
		if u.Provider == provider && u.ProviderID == providerID {
			return u, nil
		}
	}
	return models.User{}, db.ErrNotFound
}

func (f *fakeDB) GetUser(ctx context.Context, id models.UserID) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.User{}, f.err
	}
	u, ok := f.users[id.String()]
	if !ok {
		return models.User{}, db.ErrNotFound
	}
	return u, nil
}

func (f *fakeDB) CreateUser(ctx context.Context, user db.CreateUser) (models.User, error) {
	f.mu.Lock()
	if f.err != nil {
		f.mu.Unlock()
		return models.User{}, f.err
	}
	f.mu.Unlock()

	return f.addUser(models.User{
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

func (f *fakeDB) UpdateProfile(ctx context.Context, id models.UserID, nickname, avatarURL string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.User{}, f.err
	}
	u, ok := f.users[id.String()]
	if !ok {
		return models.User{}, db.ErrNotFound
	}
	u.Nickname = nickname
	u.AvatarURL = avatarURL
	f.users[id.String()] = u
	return u, nil
}

func (f *fakeDB) TouchLastLogin(ctx context.Context, id models.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	u, ok := f.users[id.String()]
	if ok {
		u.LastLogin = time.Now().Unix()
		f.users[id.String()] = u
	}
	return nil
}

func (f *fakeDB) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Post{}, f.err
	}
	post.ID = bson.NewObjectID().Hex()
	post.CreatedAt = time.Now().Unix()
	post.UpdatedAt = post.CreatedAt
	f.posts[post.Slug] = post
	return post, nil
}

func (f *fakeDB) GetPostBySlug(ctx context.Context, slug string) (models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Post{}, f.err
	}
	p, ok := f.posts[slug]
	if !ok {
		return models.Post{}, db.ErrNotFound
	}
	return p, nil
}

func (f *fakeDB) ListPosts(ctx context.Context) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	posts := []models.Post{}
	for _, p := range f.posts {
		posts = append(posts, p)
	}
	return posts, nil
}

func (f *fakeDB) TopPosts(ctx context.Context, limit int) ([]models.Post, error) {
	posts, err := f.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (f *fakeDB) UpdatePost(ctx context.Context, slug string, post models.Post) (models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Post{}, f.err
	}
	p, ok := f.posts[slug]
	if !ok {
		return models.Post{}, db.ErrNotFound
	}
	p.Title = post.Title
	p.Content = post.Content
	p.Thumbnail = post.Thumbnail
	p.Category = post.Category
	p.UpdatedAt = time.Now().Unix()
	f.posts[slug] = p
	return p, nil
}

func (f *fakeDB) DeletePost(ctx context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.posts[slug]; !ok {
		return db.ErrNotFound
	}
	delete(f.posts, slug)
	return nil
}

func (f *fakeDB) IncrementViews(ctx context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	p, ok := f.posts[slug]
	if ok {
		p.Views++
		f.posts[slug] = p
	}
	return nil
}
