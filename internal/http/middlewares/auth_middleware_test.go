package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/taskhub/internal/actorctx"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type fakeVerifier struct {
	tokens map[string]string
}

func (f fakeVerifier) Verify(token string) (string, error) {
	id, ok := f.tokens[token]
	if !ok {
		return "", errors.New("bad token")
	}
	return id, nil
}

type fakeResolver struct {
	users map[string]user.User
	err   error
}

func (f fakeResolver) Lookup(ctx context.Context, id string) (user.User, error) {
	if f.err != nil {
		return user.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func newAuthRouter(resolver fakeResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)

	verifier := fakeVerifier{tokens: map[string]string{
		"good":   "u1",
		"orphan": "gone",
	}}

	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/me", middlewares.NewAuthMiddleware(verifier, resolver).RequireAuth(), func(c *gin.Context) {
		u, ok := actorctx.UserFrom(c.Request.Context())
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		ginID, _ := middlewares.UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "ginID": ginID})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	resolver := fakeResolver{users: map[string]user.User{"u1": {ID: "u1", Email: "a@b.com"}}}

	tests := []struct {
		name       string
		header     string
		resolver   fakeResolver
		wantStatus int
	}{
		{name: "valid token", header: "Bearer good", resolver: resolver, wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer good", resolver: resolver, wantStatus: http.StatusOK},
		{name: "missing header", header: "", resolver: resolver, wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", resolver: resolver, wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", resolver: resolver, wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", resolver: resolver, wantStatus: http.StatusUnauthorized},
		{name: "deleted user", header: "Bearer orphan", resolver: resolver, wantStatus: http.StatusUnauthorized},
		{name: "store failure", header: "Bearer good", resolver: fakeResolver{err: errors.New("db down")}, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(tt.resolver)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusOK && w.Body.String() != `{"ginID":"u1","id":"u1"}` {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		})
	}
}
