package response

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"anoa.com/newsportal/pkg/apperror"
	"anoa.com/newsportal/pkg/ratelimiter"
	"anoa.com/newsportal/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	str, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Internal details stay in the log
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("internal error")
		c.AbortWithStatusJSON(code, gin.H{"error": "internal server error"})
		return
	}

	var limited *ratelimiter.RateLimitError
	if errors.As(err, &limited) {
		c.Header("Retry-After", fmt.Sprintf("%.0f", limited.RetryAfter.Seconds()))
	}

	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// BindError reports a binding or validation failure as 400.
func BindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
}

// ParamUint parses a numeric path parameter. Malformed ids are reported
// as not found, matching an id that does not exist.
func ParamUint(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%w: invalid %s", apperror.ErrNotFound, name)
	}
	return uint(v), nil
}
