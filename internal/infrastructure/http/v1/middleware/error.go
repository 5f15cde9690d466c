package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orderbell/internal/core/apperror"
	"orderbell/internal/infrastructure/http/v1/dto"
	"orderbell/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logCause(c, appErr)
			}
			c.JSON(appErr.HTTPStatus, renderError(appErr))
			return
		}

		logger.Error(c.Request.Context(), "unhandled error",
			"error", err,
		)

		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Code:    apperror.CodeInternal,
			Message: "Internal server error",
			Details: map[string]any{
				"request_id": c.GetString("request_id"),
			},
		})
	}
}

// renderError builds the client-facing body. The cause never leaves the server.
func renderError(appErr *apperror.AppError) dto.ErrorResponse {
	return dto.ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
}

// logCause logs server faults at error level; client mistakes only at debug.
func logCause(c *gin.Context, appErr *apperror.AppError) {
	ctx := c.Request.Context()
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error(ctx, "request error", "code", appErr.Code, "cause", appErr.Err)
		return
	}
	logger.Debug(ctx, "request rejected", "code", appErr.Code, "cause", appErr.Err)
}
