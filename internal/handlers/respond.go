package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"blogmodapk-backend/internal/service"
	"blogmodapk-backend/pkg/logger"
	"blogmodapk-backend/pkg/validator"
)

const internalErrorMessage = "internal server error"

// statusFor maps a service error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": message}. Unknown errors are logged and
// reported with a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(err, "Request failed", map[string]interface{}{
			"method":     c.Request.Method,
			"route":      c.FullPath(),
			"request_id": c.GetString(logger.RequestIDKey),
		})
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": internalErrorMessage})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.Message(err)})
		return false
	}
	return true
}

// pathID parses a numeric :id parameter and answers 400 when it is not one.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := service.ParseID(c.Param("id"), name)
	if err != nil {
		respondError(c, err)
		return 0, false
	}
	return id, true
}
