package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

// AccountService is the slice of service.Accounts the user routes need.
type AccountService interface {
	SignUp(ctx context.Context, req user.CreateUserRequest) (service.Session, error)
	Login(ctx context.Context, req user.LoginRequest) (service.Session, error)
	Logout(ctx context.Context, userID, token string) error
	LogoutAll(ctx context.Context, userID string) error
	Update(ctx context.Context, userID string, changes user.Changes) (user.User, error)
	Delete(ctx context.Context, u user.User) (user.User, error)
	SetAvatar(ctx context.Context, userID string, png []byte) error
	ClearAvatar(ctx context.Context, userID string) error
	Avatar(ctx context.Context, userID string) ([]byte, error)
}

type UsersHandler struct {
	accounts AccountService
}

func NewUsersHandler(accounts AccountService) *UsersHandler {
	return &UsersHandler{accounts: accounts}
}

func (h *UsersHandler) SignUp(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	session, err := h.accounts.SignUp(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "Invalid request body", gin.H{
				"fields": []FieldError{{Field: "email", Rule: "unique", Message: "is already in use"}},
			})
			return
		}
		slog.Default().ErrorContext(ctx.Request.Context(), "users.signup failed", "err", err)
		RespondEmpty(ctx, http.StatusInternalServerError)
		return
	}

	ctx.JSON(http.StatusCreated, session)
}

// Login answers every failure with a bare 400 so a caller cannot tell an
// unknown email from a wrong password.
func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		RespondEmpty(ctx, http.StatusBadRequest)
		return
	}

	session, err := h.accounts.Login(ctx.Request.Context(), req)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			slog.Default().ErrorContext(ctx.Request.Context(), "users.login failed", "err", err)
		}
		RespondEmpty(ctx, http.StatusBadRequest)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

func (h *UsersHandler) Logout(ctx *gin.Context) {
	u, _ := middlewares.CurrentUser(ctx)
	token, _ := middlewares.TokenFromContext(ctx)

	if err := h.accounts.Logout(ctx.Request.Context(), u.ID, token); err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "users.logout failed", "err", err)
		RespondEmpty(ctx, http.StatusInternalServerError)
		return
	}

	RespondEmpty(ctx, http.StatusOK)
}

func (h *UsersHandler) LogoutAll(ctx *gin.Context) {
	u, _ := middlewares.CurrentUser(ctx)

	if err := h.accounts.LogoutAll(ctx.Request.Context(), u.ID); err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "users.logout_all failed", "err", err)
		RespondEmpty(ctx, http.StatusInternalServerError)
		return
	}

	RespondEmpty(ctx, http.StatusOK)
}

func (h *UsersHandler) Me(ctx *gin.Context) {
	u, _ := middlewares.CurrentUser(ctx)

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) UpdateMe(ctx *gin.Context) {
	u, _ := middlewares.CurrentUser(ctx)

	var req user.UpdateUserRequest
	if !BindPatch(ctx, user.UpdatableFields, &req) {
		return
	}

	updated, err := h.accounts.Update(ctx.Request.Context(), u.ID, req.Changes())
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			RespondBadRequest(ctx, "Invalid request body", gin.H{
				"fields": []FieldError{{Field: "email", Rule: "unique", Message: "is already in use"}},
			})
		case errors.Is(err, user.ErrNotFound):
			RespondEmpty(ctx, http.StatusNotFound)
		default:
			slog.Default().ErrorContext(ctx.Request.Context(), "users.update failed", "err", err)
			RespondEmpty(ctx, http.StatusInternalServerError)
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *UsersHandler) DeleteMe(ctx *gin.Context) {
	u, _ := middlewares.CurrentUser(ctx)

	deleted, err := h.accounts.Delete(ctx.Request.Context(), u)
	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "users.delete failed", "err", err)
		RespondEmpty(ctx, http.StatusInternalServerError)
		return
	}

	ctx.JSON(http.StatusOK, deleted)
}
