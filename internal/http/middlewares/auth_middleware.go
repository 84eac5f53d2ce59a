package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/geocoder89/taskhub/internal/actorctx"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type UserResolver interface {
	Lookup(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
	users  UserResolver
}

func NewAuthMiddleware(tokens TokenVerifier, users UserResolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// RequireAuth resolves the bearer token to a live user and attaches it to the
// request context. Anything short of that ends the request with 401.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
			return
		}

		userID, err := m.tokens.Verify(raw)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token")
			return
		}

		u, err := m.users.Lookup(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				// token outlived its account
				abortWithError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token")
				return
			}

			LoggerFrom(c).ErrorContext(c.Request.Context(), "auth_lookup_failed", "err", err, "request_id", RequestIDFrom(c))
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Could not authenticate request")
			return
		}

		c.Request = c.Request.WithContext(actorctx.WithUser(c.Request.Context(), u))
		c.Set(CtxUserID, u.ID)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
