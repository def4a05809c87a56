package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alexindevs/orgbase/internal/token"
)

const claimsKey = "sessionClaims"

// Auth validates the Authorization header and attaches verified claims.
type Auth struct {
	Tokens *token.Issuer
}

// NewAuth builds the bearer-token middleware.
func NewAuth(tokens *token.Issuer) *Auth {
	return &Auth{Tokens: tokens}
}

// RequireSession ensures the request carries a valid bearer token. Missing,
// malformed, tampered, and expired tokens all get the same response.
func (m *Auth) RequireSession(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		unauthorized(c)
		return
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		unauthorized(c)
		return
	}
	claims, err := m.Tokens.Verify(parts[1])
	if err != nil {
		unauthorized(c)
		return
	}
	c.Set(claimsKey, claims)
	c.Next()
}

// GetClaims exposes the verified session claims to handlers.
func GetClaims(c *gin.Context) (token.Claims, bool) {
	value, ok := c.Get(claimsKey)
	if !ok {
		return token.Claims{}, false
	}
	claims, ok := value.(token.Claims)
	return claims, ok
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":     "error",
		"message":    "Unauthorized",
		"statusCode": http.StatusUnauthorized,
	})
}
