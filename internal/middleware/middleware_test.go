package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(j *JWT) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	api := r.Group("/api", j.Auth())
	api.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c), "nome": UserName(c), "papel": Role(c)})
	})
	api.GET("/clinico", RequireRole(RolePsychologist), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsSignedToken(t *testing.T) {
	j := NewJWT("s3cret", 7*24*time.Hour)
	token, err := j.Sign(42, "Ana", RolePsychologist)
	require.NoError(t, err)

	w := do(newRouter(j), "/api/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":42,"nome":"Ana","papel":"psicologo"}`, w.Body.String())
	assert.Empty(t, w.Header().Get("X-New-Token"))
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestAuthRejects(t *testing.T) {
	j := NewJWT("s3cret", time.Hour)
	other, _ := NewJWT("outro", time.Hour).Sign(1, "x", RolePatient)
	expired, _ := NewJWT("s3cret", -time.Hour).Sign(1, "x", RolePatient)
	noRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": 1, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))

	r := newRouter(j)
	for name, token := range map[string]string{"missing": "", "wrong secret": other, "expired": expired, "no role": noRole, "garbage": "abc"} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", token).Code)
		})
	}
}

func TestAuthRenewsNearExpiry(t *testing.T) {
	j := NewJWT("s3cret", time.Hour)
	token, _ := j.Sign(1, "Bruno", RolePatient)

	w := do(newRouter(j), "/api/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-New-Token"))
}

func TestRequireRole(t *testing.T) {
	j := NewJWT("s3cret", 7*24*time.Hour)
	r := newRouter(j)

	patient, _ := j.Sign(1, "Bruno", RolePatient)
	assert.Equal(t, http.StatusForbidden, do(r, "/api/clinico", patient).Code)

	psy, _ := j.Sign(2, "Ana", RolePsychologist)
	assert.Equal(t, http.StatusNoContent, do(r, "/api/clinico", psy).Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))
}
