package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/newsportal/pkg/apperror"
	"anoa.com/newsportal/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestResponseErrorStatusAndBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"validation", fmt.Errorf("%w: title taken", apperror.ErrValidation), http.StatusBadRequest, `{"error":"validation error: title taken"}`},
		{"forbidden", apperror.ErrForbidden, http.StatusForbidden, `{"error":"forbidden"}`},
		{"internal hides detail", errors.New("pq: connection refused"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			ResponseError(c, tt.err)

			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			assert.True(t, c.IsAborted())
		})
	}
}

func TestResponseErrorRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/comments/", nil)

	ResponseError(c, &ratelimiter.RateLimitError{Message: "slow down", RetryAfter: 4 * time.Second})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "4", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"slow down"}`, w.Body.String())
}

func TestParamUint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "42"}, {Key: "bad", Value: "abc"}, {Key: "zero", Value: "0"}}

	id, err := ParamUint(c, "id")
	assert.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = ParamUint(c, "bad")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = ParamUint(c, "zero")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
