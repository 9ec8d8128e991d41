// Package service holds the account workflows that span more than one
// store call: signup, login, token revocation, profile changes, avatar
// storage and the user delete cascade.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/notifications"
	"github.com/geocoder89/taskhub/internal/security"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Mailer queues account emails without blocking (notifications.Dispatcher).
type Mailer interface {
	Welcome(ctx context.Context, to notifications.Email)
	Cancellation(ctx context.Context, to notifications.Email)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
	Parse(token string) (*auth.Claims, error)
}

type Accounts struct {
	users   user.Repository
	tasks   task.Repository
	tokens  TokenIssuer
	mail    Mailer
	timeout time.Duration
}

func NewAccounts(users user.Repository, tasks task.Repository, tokens TokenIssuer, mail Mailer) *Accounts {
	return &Accounts{
		users:   users,
		tasks:   tasks,
		tokens:  tokens,
		mail:    mail,
		timeout: 3 * time.Second,
	}
}

// Session is what signup and login hand back to the client.
type Session struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

func (s *Accounts) SignUp(ctx context.Context, req user.CreateUserRequest) (Session, error) {
	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.users.Create(ctx, user.User{
		Name:     req.Name,
		Email:    req.Email,
		Age:      req.Age,
		Password: hash,
		Tokens:   []string{},
	})
	if err != nil {
		return Session{}, err
	}

	s.mail.Welcome(ctx, notifications.Email{To: u.Email, Name: u.Name})

	token, err := s.issue(ctx, u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token}, nil
}

func (s *Accounts) Login(ctx context.Context, req user.LoginRequest) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(req.Email))
	if errors.Is(err, user.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}

	if err := security.CheckPassword(u.Password, req.Password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, err := s.issue(ctx, u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token}, nil
}

func (s *Accounts) issue(ctx context.Context, userID string) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	if err := s.users.PushToken(ctx, userID, token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a raw bearer token to its user. The token must
// verify and still be present in that user's token list.
func (s *Accounts) Authenticate(ctx context.Context, raw string) (user.User, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return user.User{}, ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.users.GetByToken(ctx, claims.UserID, raw)
	if errors.Is(err, user.ErrNotFound) {
		return user.User{}, ErrUnauthenticated
	}
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Accounts) Logout(ctx context.Context, userID, token string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.users.PullToken(ctx, userID, token)
}

func (s *Accounts) LogoutAll(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.users.ClearTokens(ctx, userID)
}

// Update applies a validated profile change. A supplied password is hashed
// here and only here.
func (s *Accounts) Update(ctx context.Context, userID string, changes user.Changes) (user.User, error) {
	if changes.Password != nil {
		hash, err := security.HashPassword(*changes.Password)
		if err != nil {
			return user.User{}, fmt.Errorf("hash password: %w", err)
		}
		changes.Password = &hash
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if changes.Empty() {
		return s.users.GetByID(ctx, userID)
	}
	return s.users.Update(ctx, userID, changes)
}

// Delete removes the user's tasks and then the user. The two deletes are
// not atomic; a failure after the first leaves the user without tasks,
// and retrying the delete completes it.
func (s *Accounts) Delete(ctx context.Context, u user.User) (user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.tasks.DeleteByOwner(ctx, u.ID); err != nil {
		return user.User{}, fmt.Errorf("delete tasks of %s: %w", u.ID, err)
	}
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return user.User{}, fmt.Errorf("delete user %s: %w", u.ID, err)
	}

	s.mail.Cancellation(ctx, notifications.Email{To: u.Email, Name: u.Name})

	return u, nil
}

func (s *Accounts) SetAvatar(ctx context.Context, userID string, png []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.users.SetAvatar(ctx, userID, png)
}

func (s *Accounts) ClearAvatar(ctx context.Context, userID string) error {
	return s.SetAvatar(ctx, userID, nil)
}

// Avatar returns the stored PNG for userID straight from the store, so a
// deleted or replaced avatar is never served once the write returned.
func (s *Accounts) Avatar(ctx context.Context, userID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(u.Avatar) == 0 {
		return nil, user.ErrNoAvatar
	}
	return u.Avatar, nil
}
