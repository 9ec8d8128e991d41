package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email is already in use")
	ErrNoAvatar   = errors.New("user has no avatar")
)

// User is the account document. Password holds the bcrypt hash; it and the
// token list and avatar bytes never leave the service in JSON.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       float64   `json:"age"`
	Password  string    `json:"-"`
	Tokens    []string  `json:"-"`
	Avatar    []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// Changes carries a partial profile update. Nil fields are left untouched.
// Password must already be hashed when it reaches a repository.
type Changes struct {
	Name     *string
	Email    *string
	Password *string
	Age      *float64
}

func (c Changes) Empty() bool {
	return c.Name == nil && c.Email == nil && c.Password == nil && c.Age == nil
}

type CreateUserRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=7,nopassword"`
	Age      float64 `json:"age" binding:"min=0"`
}

func (r *CreateUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the PATCH /users/me body. Keys outside
// UpdatableFields are rejected before it is decoded.
type UpdateUserRequest struct {
	Name     *string  `json:"name" binding:"omitnil,min=1"`
	Email    *string  `json:"email" binding:"omitnil,email"`
	Password *string  `json:"password" binding:"omitnil,min=7,nopassword"`
	Age      *float64 `json:"age" binding:"omitnil,min=0"`
}

var UpdatableFields = []string{"name", "email", "password", "age"}

func (r *UpdateUserRequest) Normalize() {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
	if r.Email != nil {
		v := NormalizeEmail(*r.Email)
		r.Email = &v
	}
	if r.Password != nil {
		v := strings.TrimSpace(*r.Password)
		r.Password = &v
	}
}

func (r UpdateUserRequest) Changes() Changes {
	return Changes{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Age:      r.Age,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Repository is implemented by every store backend.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// GetByToken returns the user with the given id only if token is in its
	// token list.
	GetByToken(ctx context.Context, id, token string) (User, error)
	Update(ctx context.Context, id string, changes Changes) (User, error)
	PushToken(ctx context.Context, id, token string) error
	PullToken(ctx context.Context, id, token string) error
	ClearTokens(ctx context.Context, id string) error
	// SetAvatar stores png as the avatar; a nil slice removes it.
	SetAvatar(ctx context.Context, id string, png []byte) error
	Delete(ctx context.Context, id string) error
}
