package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-platform-api/internal/auth"
	"github.com/content-platform-api/internal/models"
)

// statusFor maps a domain error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, auth.ErrExternalDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error body for err. Unexpected errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": err.Error()}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		body["error"] = verr.Message
		body["field"] = verr.Field
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// queryLimit parses the optional limit query parameter. Zero means default.
func queryLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, models.NewValidationError("limit", "must be a non-negative integer")
	}
	return limit, nil
}
