package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doRequest(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Allow(t *testing.T) {
	router := setupTestGin()
	router.Use(RateLimiter(1, 1))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	assert.Equal(t, http.StatusOK, doRequest(router, "127.0.0.1:12345").Code)

	w := doRequest(router, "127.0.0.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	router := setupTestGin()
	router.Use(RateLimiter(1, 1))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	assert.Equal(t, http.StatusOK, doRequest(router, "127.0.0.1:12345").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "192.168.1.1:12345").Code)
}
