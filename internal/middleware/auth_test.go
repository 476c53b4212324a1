package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cibaria/backend/internal/auth"
	"github.com/pageza/cibaria/backend/internal/models"
)

func authRouter(reader *auth.ClaimsReader) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(reader), func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.UserID, "user_id": c.GetUint(userIDKey)})
	})
	r.GET("/admin", AuthMiddleware(reader), RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func withToken(method, path, header string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	return req
}

func TestAuthMiddleware(t *testing.T) {
	reader := auth.NewClaimsReader("test-secret", "cibaria")
	r := authRouter(reader)

	token, err := reader.Issue(7, []string{models.RoleUser}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid token", header: "Bearer " + token, want: http.StatusOK},
		{name: "lower-case scheme", header: "bearer " + token, want: http.StatusOK},
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, want: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not.a.token", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, withToken(http.MethodGet, "/me", tt.header))
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"id":7,"user_id":7}`, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	reader := auth.NewClaimsReader("test-secret", "cibaria")
	r := authRouter(reader)

	userToken, err := reader.Issue(1, []string{models.RoleUser}, time.Hour)
	require.NoError(t, err)
	adminToken, err := reader.Issue(2, []string{models.RoleUser, models.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withToken(http.MethodGet, "/admin", "Bearer "+userToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withToken(http.MethodGet, "/admin", "Bearer "+adminToken))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
