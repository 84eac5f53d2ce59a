package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/accounts"
	"github.com/geocoder89/taskhub/internal/actorctx"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/validation"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, reg validation.Registration) (user.User, error)
	Verify(ctx context.Context, creds validation.Credentials) (user.User, error)
	ChangePassword(ctx context.Context, userID string, change validation.PasswordChange) error
}

type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

type AuthHandler struct {
	accounts AccountService
	tokens   TokenIssuer
}

func NewAuthHandler(accounts AccountService, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens}
}

type authResponse struct {
	User      user.User `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// bcrypt dominates these calls
const authTimeout = 5 * time.Second

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	reg, err := validation.Register(req)
	if err != nil {
		RespondValidation(ctx, err)
		return
	}

	cctx, cancel := requestTimeout(ctx, authTimeout)
	defer cancel()

	u, err := h.accounts.Register(cctx, reg)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user", err)
		return
	}

	h.respondWithToken(ctx, http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	creds, err := validation.Login(req)
	if err != nil {
		RespondValidation(ctx, err)
		return
	}

	cctx, cancel := requestTimeout(ctx, authTimeout)
	defer cancel()

	u, err := h.accounts.Verify(cctx, creds)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		RespondInternal(ctx, "Could not log in", err)
		return
	}

	h.respondWithToken(ctx, http.StatusOK, u)
}

// Logout is acknowledged only. Tokens are stateless and expire on their own;
// the client discards its copy.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := actorctx.UserFrom(ctx.Request.Context())
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	userID, ok := actorctx.UserIDFrom(ctx.Request.Context())
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req user.ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	change, err := validation.ChangePassword(req)
	if err != nil {
		RespondValidation(ctx, err)
		return
	}

	cctx, cancel := requestTimeout(ctx, authTimeout)
	defer cancel()

	if err := h.accounts.ChangePassword(cctx, userID, change); err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			RespondUnAuthorized(ctx, "invalid_credentials", "Current password is incorrect.")
			return
		}

		RespondInternal(ctx, "Could not change password", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) respondWithToken(ctx *gin.Context, status int, u user.User) {
	token, expiresAt, err := h.tokens.Issue(u.ID)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token", err)
		return
	}

	ctx.JSON(status, authResponse{User: u, Token: token, ExpiresAt: expiresAt})
}

func requestTimeout(ctx *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), d)
}
