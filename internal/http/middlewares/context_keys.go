package middlewares

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// gin.Context keys shared by middlewares and handlers.
const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.userID"
	CtxLogger    = "logger"
)

// LoggerFrom returns the logger RequestLogger attached, or slog.Default()
// outside of it.
func LoggerFrom(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(CtxLogger); ok {
		if log, ok := v.(*slog.Logger); ok {
			return log
		}
	}
	return slog.Default()
}

func RequestIDFrom(c *gin.Context) string {
	if id := c.GetString(CtxRequestID); id != "" {
		return id
	}
	return c.GetHeader(requestIDHeader)
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(CtxUserID)
	return id, id != ""
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":      code,
			"message":   message,
			"requestId": RequestIDFrom(c),
		},
	})
}
