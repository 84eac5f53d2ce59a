package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/validation"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: middlewares.RequestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// RespondInternal logs the cause and answers with a generic 500.
func RespondInternal(ctx *gin.Context, message string, err error) {
	middlewares.LoggerFrom(ctx).ErrorContext(ctx.Request.Context(), "request_failed",
		"err", err,
		"route", ctx.FullPath(),
		"request_id", middlewares.RequestIDFrom(ctx),
	)
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondValidation answers 400 with the field list for validation errors.
// Anything else is unexpected and becomes a logged 500.
func RespondValidation(ctx *gin.Context, err error) {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		RespondInternal(ctx, "Could not process request", err)
		return
	}

	RespondBadRequest(ctx, verrs.Error(), gin.H{"fields": []validation.FieldError(verrs)})
}
