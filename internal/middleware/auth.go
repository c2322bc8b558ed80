package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/pkg/auth"
	"github.com/blisstech/pharmacy-api/pkg/httputil"
)

const contextSessionKey = "session"

type AuthMiddleware struct {
	jwtService auth.JWTService
}

func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// Authenticate verifies the bearer token and stores the caller's session
// in the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthenticated(c, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthenticated(c, "invalid authorization format")
			return
		}

		session, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			abortUnauthenticated(c, "invalid token")
			return
		}

		c.Set(contextSessionKey, session)
		c.Next()
	}
}

// SessionFrom returns the session set by Authenticate.
func SessionFrom(c *gin.Context) (*model.Session, bool) {
	v, ok := c.Get(contextSessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*model.Session)
	return session, ok
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.Response{
		Success: false,
		Error:   &httputil.Error{Code: http.StatusUnauthorized, Message: message},
	})
}
