package middleware

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/newsportal/internal/rbac"
	"anoa.com/newsportal/pkg/apperror"
	"anoa.com/newsportal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const identityKey = "identity"

type TokenParser interface {
	ParseAccessToken(token string) (uuid.UUID, error)
}

type IdentityResolver interface {
	Identity(ctx context.Context, userID uuid.UUID) (rbac.Identity, error)
}

type AuthMiddleware struct {
	tokens   TokenParser
	resolver IdentityResolver
	policy   rbac.Policy
}

func NewAuthMiddleware(tokens TokenParser, resolver IdentityResolver, policy rbac.Policy) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		resolver: resolver,
		policy:   policy,
	}
}

// Authenticate resolves the bearer token when one is sent. Requests without
// a token continue as anonymous; a malformed or expired token is rejected.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(identityKey, rbac.Identity{})
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.ResponseError(c, fmt.Errorf("%w: authorization header must be Bearer <token>", apperror.ErrUnauthorized))
			return
		}

		userID, err := m.tokens.ParseAccessToken(parts[1])
		if err != nil {
			response.ResponseError(c, err)
			return
		}

		identity, err := m.resolver.Identity(c.Request.Context(), userID)
		if err != nil {
			response.ResponseError(c, err)
			return
		}

		c.Set("user_id", userID.String())
		c.Set(identityKey, identity)
		c.Next()
	}
}

// Authorize consults the capability table for the route. Owner checks run
// later in the service once the object is loaded.
func (m *AuthMiddleware) Authorize(action rbac.Action, resource rbac.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.policy.Check(CurrentIdentity(c), action, resource); err != nil {
			response.ResponseError(c, err)
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the caller, anonymous when unauthenticated.
func CurrentIdentity(c *gin.Context) rbac.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return rbac.Identity{}
	}
	identity, _ := v.(rbac.Identity)
	return identity
}
