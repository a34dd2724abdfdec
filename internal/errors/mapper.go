package errors

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Map converts repo/infra errors into an HTTP status plus wire code.
// Keeps handlers clean by centralizing error translation.
func Map(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var svcErr *Error
	switch {
	case errors.As(err, &svcErr):
		return svcErr.Status, svcErr.Code

	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "not_found"

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"

	case errors.Is(err, context.Canceled):
		return 499, "canceled"

	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// Fail writes the standard error envelope for err.
func Fail(c *gin.Context, err error) {
	status, code := Map(err)
	c.JSON(status, gin.H{"ok": false, "error": code})
}
