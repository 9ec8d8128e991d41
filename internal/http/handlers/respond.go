package handlers

import (
	"net/http"

	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := middlewares.RequestIDFromContext(ctx); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

// RespondInvalidUpdates rejects a PATCH body that names a field the
// resource does not allow to change.
func RespondInvalidUpdates(ctx *gin.Context) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid updates"})
}

// RespondMessage is the flat {"error": msg} body used by the avatar upload.
func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}

// RespondEmpty writes status with no body.
func RespondEmpty(ctx *gin.Context, status int) {
	ctx.Status(status)
	ctx.Writer.WriteHeaderNow()
}
