package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/accounts"
	"github.com/geocoder89/taskhub/internal/actorctx"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeTaskStore struct {
	err       error
	created   []task.NewTask
	lastOwner string
}

func (f *fakeTaskStore) List(ctx context.Context, ownerID string, filter task.ListFilter) ([]task.Task, error) {
	f.lastOwner = ownerID
	return []task.Task{}, f.err
}

func (f *fakeTaskStore) GetByID(ctx context.Context, ownerID, id string) (task.Task, error) {
	f.lastOwner = ownerID
	return task.Task{}, f.err
}

func (f *fakeTaskStore) Create(ctx context.Context, ownerID string, in task.NewTask) (task.Task, error) {
	f.lastOwner = ownerID
	f.created = append(f.created, in)
	if f.err != nil {
		return task.Task{}, f.err
	}
	return task.NewForOwner(ownerID, in), nil
}

func (f *fakeTaskStore) Update(ctx context.Context, ownerID, id string, p task.Patch) (task.Task, error) {
	f.lastOwner = ownerID
	return task.Task{}, f.err
}

func (f *fakeTaskStore) Delete(ctx context.Context, ownerID, id string) error {
	f.lastOwner = ownerID
	return f.err
}

// withUser stands in for the auth middleware.
func withUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(actorctx.WithUser(c.Request.Context(), user.User{ID: id}))
		c.Next()
	}
}

func newTasksRouter(store *fakeTaskStore, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := handlers.NewTasksHandler(store)

	r := gin.New()
	if userID != "" {
		r.Use(withUser(userID))
	}
	r.GET("/tasks", h.List)
	r.POST("/tasks", h.Create)
	r.GET("/tasks/:id", h.Get)
	r.PATCH("/tasks/:id", h.Update)
	r.DELETE("/tasks/:id", h.Delete)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error handlers.APIError `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}
	return resp.Error.Code
}

func TestTasksHandler_StoreErrors(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name       string
		storeErr   error
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "list failure", storeErr: errors.New("boom"), method: http.MethodGet, path: "/tasks", wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
		{name: "get not found", storeErr: task.ErrNotFound, method: http.MethodGet, path: "/tasks/" + id, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "get failure", storeErr: errors.New("boom"), method: http.MethodGet, path: "/tasks/" + id, wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
		{name: "create failure", storeErr: errors.New("boom"), method: http.MethodPost, path: "/tasks", body: `{"title":"abc","description":"","status":"done"}`, wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
		{name: "update not found", storeErr: task.ErrNotFound, method: http.MethodPatch, path: "/tasks/" + id, body: `{"status":"done"}`, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "delete not found", storeErr: task.ErrNotFound, method: http.MethodDelete, path: "/tasks/" + id, wantStatus: http.StatusNotFound, wantCode: "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeTaskStore{err: tt.storeErr}
			w := serve(newTasksRouter(store, "owner-1"), tt.method, tt.path, tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if code := errorCode(t, w); code != tt.wantCode {
				t.Fatalf("got code %q, want %q", code, tt.wantCode)
			}
			if strings.Contains(w.Body.String(), "boom") {
				t.Fatalf("internal error detail leaked: %s", w.Body.String())
			}
			if store.lastOwner != "owner-1" {
				t.Fatalf("store called with owner %q", store.lastOwner)
			}
		})
	}
}

func TestTasksHandler_ValidationShortCircuits(t *testing.T) {
	store := &fakeTaskStore{}
	r := newTasksRouter(store, "owner-1")

	w := serve(r, http.MethodPost, "/tasks", `{"title":"  ab  ","description":"","status":"to_do"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", w.Code)
	}
	if len(store.created) != 0 {
		t.Fatalf("store should not be called on invalid input")
	}

	w = serve(r, http.MethodPost, "/tasks", `{"title":"  padded title  ","description":"  d ","status":"to_do"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("got %d, want 201 body=%s", w.Code, w.Body.String())
	}
	if store.created[0].Title != "padded title" || store.created[0].Description != "d" {
		t.Fatalf("values not trimmed: %+v", store.created[0])
	}
	if w.Header().Get("Location") == "" {
		t.Fatalf("expected Location header")
	}
}

func TestTasksHandler_RequiresIdentity(t *testing.T) {
	store := &fakeTaskStore{}
	w := serve(newTasksRouter(store, ""), http.MethodGet, "/tasks", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", w.Code)
	}
	if store.lastOwner != "" {
		t.Fatalf("store should not be reached without identity")
	}
}

type fakeAccounts struct {
	registerErr error
	verifyErr   error
}

func (f fakeAccounts) Register(ctx context.Context, reg validation.Registration) (user.User, error) {
	if f.registerErr != nil {
		return user.User{}, f.registerErr
	}
	return user.User{ID: "u1", Email: reg.Email}, nil
}

func (f fakeAccounts) Verify(ctx context.Context, creds validation.Credentials) (user.User, error) {
	if f.verifyErr != nil {
		return user.User{}, f.verifyErr
	}
	return user.User{ID: "u1", Email: creds.Email}, nil
}

func (f fakeAccounts) ChangePassword(ctx context.Context, userID string, change validation.PasswordChange) error {
	return nil
}

type fakeIssuer struct {
	err error
}

func (f fakeIssuer) Issue(userID string) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return "token-for-" + userID, time.Now().Add(time.Hour), nil
}

func TestAuthHandler_ErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		accounts   fakeAccounts
		issuer     fakeIssuer
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "register ok", path: "/register", body: `{"email":"a@b.com","password":"secret1"}`, wantStatus: http.StatusCreated},
		{name: "register duplicate", accounts: fakeAccounts{registerErr: user.ErrEmailTaken}, path: "/register", body: `{"email":"a@b.com","password":"secret1"}`, wantStatus: http.StatusConflict, wantCode: "email_taken"},
		{name: "register store down", accounts: fakeAccounts{registerErr: errors.New("db down")}, path: "/register", body: `{"email":"a@b.com","password":"secret1"}`, wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
		{name: "register empty body", path: "/register", wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "login rejected", accounts: fakeAccounts{verifyErr: accounts.ErrInvalidCredentials}, path: "/login", body: `{"email":"a@b.com","password":"x"}`, wantStatus: http.StatusUnauthorized, wantCode: "invalid_credentials"},
		{name: "login store down", accounts: fakeAccounts{verifyErr: errors.New("db down")}, path: "/login", body: `{"email":"a@b.com","password":"x"}`, wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
		{name: "login missing password", path: "/login", body: `{"email":"a@b.com"}`, wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "token failure", issuer: fakeIssuer{err: errors.New("no key")}, path: "/login", body: `{"email":"a@b.com","password":"x"}`, wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewAuthHandler(tt.accounts, tt.issuer)

			r := gin.New()
			r.POST("/register", h.Register)
			r.POST("/login", h.Login)

			w := serve(r, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, w); code != tt.wantCode {
					t.Fatalf("got code %q, want %q", code, tt.wantCode)
				}
			}
		})
	}
}

func TestRespondValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "field errors",
			err:        validation.Errors{{Field: "title", Rule: "min", Param: "3", Message: "too short"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "unexpected error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { handlers.RespondValidation(c, tt.err) })

			w := serve(r, http.MethodGet, "/", "")
			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d", w.Code, tt.wantStatus)
			}
			if code := errorCode(t, w); code != tt.wantCode {
				t.Fatalf("got code %q, want %q", code, tt.wantCode)
			}
			if strings.Contains(w.Body.String(), "boom") {
				t.Fatalf("internal error detail leaked: %s", w.Body.String())
			}
		})
	}
}
