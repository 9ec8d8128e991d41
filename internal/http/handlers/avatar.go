package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/imaging"
	"github.com/gin-gonic/gin"
)

const avatarField = "avatar"

func (h *UsersHandler) UploadAvatar(ctx *gin.Context) {
	u, _ := middlewares.CurrentUser(ctx)

	fh, err := ctx.FormFile(avatarField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			RespondMessage(ctx, http.StatusBadRequest, imaging.ErrTooLarge.Error())
			return
		}
		RespondMessage(ctx, http.StatusBadRequest, imaging.ErrUnsupportedType.Error())
		return
	}

	if err := imaging.ValidateUpload(fh.Filename, fh.Size); err != nil {
		RespondMessage(ctx, http.StatusBadRequest, err.Error())
		return
	}

	f, err := fh.Open()
	if err != nil {
		RespondMessage(ctx, http.StatusBadRequest, imaging.ErrUnsupportedType.Error())
		return
	}
	defer f.Close()

	png, err := imaging.Thumbnail(f)
	if errors.Is(err, imaging.ErrTooLarge) {
		RespondMessage(ctx, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		RespondMessage(ctx, http.StatusBadRequest, imaging.ErrUnsupportedType.Error())
		return
	}

	if err := h.accounts.SetAvatar(ctx.Request.Context(), u.ID, png); err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "users.avatar_upload failed", "err", err)
		RespondEmpty(ctx, http.StatusInternalServerError)
		return
	}

	RespondEmpty(ctx, http.StatusOK)
}

func (h *UsersHandler) DeleteAvatar(ctx *gin.Context) {
	u, _ := middlewares.CurrentUser(ctx)

	if err := h.accounts.ClearAvatar(ctx.Request.Context(), u.ID); err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "users.avatar_delete failed", "err", err)
		RespondEmpty(ctx, http.StatusInternalServerError)
		return
	}

	RespondEmpty(ctx, http.StatusOK)
}

// GetAvatar is public: anyone who knows a user id can fetch the picture.
func (h *UsersHandler) GetAvatar(ctx *gin.Context) {
	png, err := h.accounts.Avatar(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) || errors.Is(err, user.ErrNoAvatar) {
			RespondEmpty(ctx, http.StatusBadRequest)
			return
		}
		slog.Default().ErrorContext(ctx.Request.Context(), "users.avatar_read failed", "err", err)
		RespondEmpty(ctx, http.StatusInternalServerError)
		return
	}

	RespondBytesWithETag(ctx, http.StatusOK, "image/png", png)
}
