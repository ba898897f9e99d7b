package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserKey = "user_id"
	sessionUserKey = "uid"
)

// IssueToken signs a bearer token for API clients. Browser clients get a
// cookie session instead; both paths land in the same middleware.
func IssueToken(secret string, userID uint, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": float64(userID),
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseToken(secret, raw string) (uint, bool) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, false
	}
	return uint(sub), true
}

// SetSessionUser stores the user on the cookie session after login.
func SetSessionUser(c *gin.Context, userID uint) error {
	s := sessions.Default(c)
	s.Set(sessionUserKey, userID)
	return s.Save()
}

func ClearSessionUser(c *gin.Context) error {
	s := sessions.Default(c)
	s.Delete(sessionUserKey)
	return s.Save()
}

// Auth accepts either a Bearer token or an authenticated cookie session and
// puts the user id on the gin context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			if uid, ok := parseToken(secret, strings.TrimPrefix(h, "Bearer ")); ok {
				c.Set(ContextUserKey, uid)
				c.Next()
				return
			}
		}
		if v := sessions.Default(c).Get(sessionUserKey); v != nil {
			if uid, ok := v.(uint); ok {
				c.Set(ContextUserKey, uid)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
}

// CurrentUserID reads the id the Auth middleware stored.
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserKey); ok {
		if uid, ok := v.(uint); ok {
			return uid
		}
	}
	return 0
}
