package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const callerKey = "caller_service"

// Claims is the JWT payload carried by gateway service tokens. The bot
// has no end-user accounts; callers are trusted chat gateways that
// resolve platform users themselves and pass user ids in request
// bodies.
type Claims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}

// GenerateToken signs a service token with the given secret and TTL.
func GenerateToken(service, secret string, ttl time.Duration) (string, error) {
	claims := &Claims{
		Service: service,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a service token and returns the claims.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Auth requires a valid Bearer service token on every request. An empty
// secret disables authentication, which is only sensible in local
// development.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		tokenStr, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := ParseToken(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(callerKey, claims.Service)
		c.Next()
	}
}

// CallerService returns the authenticated caller's service name, or ""
// when auth is disabled.
func CallerService(c *gin.Context) string {
	if v, exists := c.Get(callerKey); exists {
		return v.(string)
	}
	return ""
}
