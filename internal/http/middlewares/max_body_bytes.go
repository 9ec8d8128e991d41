package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyLimits maps "METHOD /route/:template" to a body cap that replaces the
// default for that route.
type BodyLimits map[string]int64

// MaxBodyBytes caps request bodies at def, or at the matching entry in
// perRoute. It must run after routing so FullPath is known, which holds for
// engine-level middleware in gin.
func MaxBodyBytes(def int64, perRoute BodyLimits) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		limit := def
		if n, ok := perRoute[ctx.Request.Method+" "+ctx.FullPath()]; ok {
			limit = n
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit)

		ctx.Next()
	}
}
