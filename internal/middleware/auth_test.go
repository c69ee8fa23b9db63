package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/ems-api/internal/models"
	"github.com/yukikurage/ems-api/internal/services"
)

func authRouter(tokens *services.TokenManager, extra ...gin.HandlerFunc) *gin.Engine {
	router := setupTestGin()
	handlers := append([]gin.HandlerFunc{RequireAuth(tokens)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	router.GET("/me", handlers...)
	return router
}

func getWithAuth(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	tokens := services.NewTokenManager("test-secret", time.Hour)
	router := authRouter(tokens)

	token, err := tokens.Issue(&models.User{ID: "u1", Role: models.RoleEmployee})
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		w := getWithAuth(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"u1","role":"employee"}`, w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, getWithAuth(router, "").Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, getWithAuth(router, "Basic "+token).Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other, err := services.NewTokenManager("other", time.Hour).Issue(&models.User{ID: "u1", Role: models.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, getWithAuth(router, "Bearer "+other).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := services.NewTokenManager("test-secret", -time.Minute).Issue(&models.User{ID: "u1", Role: models.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, getWithAuth(router, "Bearer "+expired).Code)
	})
}

func TestRequireRole(t *testing.T) {
	tokens := services.NewTokenManager("test-secret", time.Hour)
	router := authRouter(tokens, RequireRole(models.RoleAdmin))

	admin, err := tokens.Issue(&models.User{ID: "a1", Role: models.RoleAdmin})
	require.NoError(t, err)
	employee, err := tokens.Issue(&models.User{ID: "e1", Role: models.RoleEmployee})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, getWithAuth(router, "Bearer "+admin).Code)
	assert.Equal(t, http.StatusForbidden, getWithAuth(router, "Bearer "+employee).Code)
}
