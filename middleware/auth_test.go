package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthRouter(secret string) *gin.Engine {
	r := gin.New()
	r.Use(Auth(secret))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, CallerService(c))
	})
	return r
}

func TestAuth_ValidToken(t *testing.T) {
	token, err := GenerateToken("discord-gateway", testSecret, time.Hour)
	require.NoError(t, err)

	r := newAuthRouter(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "discord-gateway", w.Body.String())
}

func TestAuth_MissingToken(t *testing.T) {
	r := newAuthRouter(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongSecret(t *testing.T) {
	token, err := GenerateToken("discord-gateway", "other-secret", time.Hour)
	require.NoError(t, err)

	r := newAuthRouter(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	token, err := GenerateToken("discord-gateway", testSecret, -time.Minute)
	require.NoError(t, err)

	r := newAuthRouter(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_DisabledWithEmptySecret(t *testing.T) {
	r := newAuthRouter("")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminOnly(t *testing.T) {
	r := gin.New()
	r.Use(AdminOnly("k3y", nil))
	r.POST("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("X-Admin-Key", "k3y")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminOnly_IPAllowlist(t *testing.T) {
	r := gin.New()
	r.Use(AdminOnly("k3y", []string{"10.9.9.9"}))
	r.POST("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("X-Admin-Key", "k3y")
	req.Header.Set("X-Real-IP", "10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
