package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminOnly guards the admin route group. Requests must carry the
// shared admin key, and when allowIPs is non-empty the client IP must
// be on the list as well.
func AdminOnly(adminKey string, allowIPs []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowIPs))
	for _, ip := range allowIPs {
		allowed[ip] = true
	}
	return func(c *gin.Context) {
		if len(allowed) > 0 && !allowed[c.ClientIP()] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		if adminKey == "" || c.GetHeader("X-Admin-Key") != adminKey {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}
