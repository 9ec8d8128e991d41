package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/google/uuid"
)

type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User // {"id": user}
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	r.items[u.ID] = cloneUser(u)

	return cloneUser(u), nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByToken(_ context.Context, id, token string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok || !u.HasToken(token) {
		return user.User{}, user.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UsersRepo) Update(_ context.Context, id string, changes user.Changes) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if changes.Email != nil {
		for otherID, other := range r.items {
			if otherID != id && other.Email == *changes.Email {
				return user.User{}, user.ErrEmailTaken
			}
		}
		u.Email = *changes.Email
	}
	if changes.Name != nil {
		u.Name = *changes.Name
	}
	if changes.Password != nil {
		u.Password = *changes.Password
	}
	if changes.Age != nil {
		u.Age = *changes.Age
	}
	u.UpdatedAt = time.Now().UTC()

	r.items[id] = u
	return cloneUser(u), nil
}

func (r *UsersRepo) PushToken(_ context.Context, id, token string) error {
	return r.mutate(id, func(u *user.User) {
		u.Tokens = append(u.Tokens, token)
	})
}

func (r *UsersRepo) PullToken(_ context.Context, id, token string) error {
	return r.mutate(id, func(u *user.User) {
		kept := u.Tokens[:0]
		for _, t := range u.Tokens {
			if t != token {
				kept = append(kept, t)
			}
		}
		u.Tokens = kept
	})
}

func (r *UsersRepo) ClearTokens(_ context.Context, id string) error {
	return r.mutate(id, func(u *user.User) {
		u.Tokens = []string{}
	})
}

func (r *UsersRepo) SetAvatar(_ context.Context, id string, png []byte) error {
	return r.mutate(id, func(u *user.User) {
		u.Avatar = append([]byte(nil), png...)
		if png == nil {
			u.Avatar = nil
		}
	})
}

func (r *UsersRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *UsersRepo) mutate(id string, fn func(u *user.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}

	u = cloneUser(u)
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return nil
}

// stored users never share slices with callers
func cloneUser(u user.User) user.User {
	if u.Tokens != nil {
		u.Tokens = append([]string(nil), u.Tokens...)
	}
	if u.Avatar != nil {
		u.Avatar = append([]byte(nil), u.Avatar...)
	}
	return u
}
