package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/newsportal/internal/rbac"
	"anoa.com/newsportal/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubTokens map[string]uuid.UUID

func (s stubTokens) ParseAccessToken(token string) (uuid.UUID, error) {
	id, ok := s[token]
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}
	return id, nil
}

type stubResolver map[uuid.UUID]rbac.Role

func (s stubResolver) Identity(_ context.Context, id uuid.UUID) (rbac.Identity, error) {
	role, ok := s[id]
	if !ok {
		return rbac.Identity{}, errors.New("lookup failed")
	}
	return rbac.Identity{UserID: id, Role: role}, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	readerID, writerID := uuid.New(), uuid.New()
	auth := NewAuthMiddleware(
		stubTokens{"reader-token": readerID, "writer-token": writerID},
		stubResolver{readerID: rbac.RoleReader, writerID: rbac.RoleWriter},
		rbac.DefaultPolicy(),
	)

	r := gin.New()
	r.Use(auth.Authenticate())
	r.GET("/news/", auth.Authorize(rbac.ActionList, rbac.ResourceNews), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"anonymous": CurrentIdentity(c).IsAnonymous()})
	})
	r.POST("/news/", auth.Authorize(rbac.ActionCreate, rbac.ResourceNews), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name   string
		method string
		header string
		want   int
	}{
		{"anonymous read", http.MethodGet, "", http.StatusOK},
		{"anonymous write", http.MethodPost, "", http.StatusUnauthorized},
		{"reader write", http.MethodPost, "Bearer reader-token", http.StatusForbidden},
		{"writer write", http.MethodPost, "Bearer writer-token", http.StatusCreated},
		{"bad token on public route", http.MethodGet, "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", http.MethodGet, "Token reader-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/news/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
