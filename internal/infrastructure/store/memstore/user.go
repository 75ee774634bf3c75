package memstore

import (
	"context"
	"sync"

	"planeats/internal/core/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository 記憶體使用者儲存
type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*user.User
}

// NewUserRepository 創建記憶體使用者儲存
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]*user.User)}
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return user.ErrUserExists
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = clone(u)
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*user.User, error) {
	return r.findBy(func(u *user.User) bool { return u.Email == email })
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*user.User, error) {
	return r.findBy(func(u *user.User) bool { return u.Username == username })
}

func (r *UserRepository) findBy(match func(*user.User) bool) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *UserRepository) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	r.users[u.ID] = clone(u)
	return nil
}
