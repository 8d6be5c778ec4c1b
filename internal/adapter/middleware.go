package adapter

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skynetfrank/user-service/internal/auth"
)

const claimsKey = "claims"

// RequireAuth demands a valid bearer token and stashes its claims in the
// request context. Expired and otherwise-invalid tokens get distinct
// messages so clients can prompt for a fresh sign-in.
func RequireAuth(jwter *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authorization token required"})
			return
		}
		claims, err := jwter.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token expired, please sign in again"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin gates a route on the admin claim. It only inspects claims
// already placed in the context by RequireAuth; it never re-parses the token,
// so it must always be chained after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !claims.IsAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "admin privileges required"})
			return
		}
		c.Next()
	}
}

// GetClaims returns the verified claims for the request, or nil when
// RequireAuth has not run.
func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
