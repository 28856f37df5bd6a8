package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

const (
	// UserIDContextKey is a gin context key for authenticated user identifier.
	UserIDContextKey = "userID"
	// GuestTokenContextKey is a gin context key for the guest order token.
	GuestTokenContextKey = "guestToken"
	// OrderTokenHeader carries the guest token issued with a guest order.
	OrderTokenHeader = "X-Order-Token"
	authCookieName   = "storefront_token"
)

// TokenParser resolves identity tokens to user identifiers.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// Identify resolves the optional bearer identity and the guest order token.
// Requests without credentials pass through anonymously; a malformed
// identity token is rejected.
func Identify(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if guest := strings.TrimSpace(c.GetHeader(OrderTokenHeader)); guest != "" {
			c.Set(GuestTokenContextKey, guest)
		}

		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}
		if !authenticate(c, parser, token) {
			return
		}
		c.Next()
	}
}

// AuthRequired ensures user is authenticated before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(UserIDContextKey); ok {
			c.Next()
			return
		}
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if !authenticate(c, parser, token) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, parser TokenParser, token string) bool {
	userID, err := parser.ParseToken(token)
	if err != nil {
		if errors.Is(err, pkgAuth.ErrInvalidToken) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return false
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return false
	}
	c.Set(UserIDContextKey, userID)
	return true
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}
