package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"library_catalog/internal/model"
	"library_catalog/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAuth struct {
	claims *utils.JWTClaims
	err    error
	got    string
}

func (s *stubAuth) Authenticate(token string) (*utils.JWTClaims, error) {
	s.got = token
	return s.claims, s.err
}

func newRouter(auth Authenticator, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuthMiddleware(auth)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"admin": c.GetInt64(AuthAdminKey),
			"role":  c.GetString(AuthRoleKey),
			"token": c.GetString(AuthTokenKey),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func doGet(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	auth := &stubAuth{claims: &utils.JWTClaims{AdminID: 7, Role: model.RoleAdmin}}
	r := newRouter(auth)

	w := doGet(r, "Bearer abc.def")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc.def", auth.got)
	assert.JSONEq(t, `{"admin":7,"role":"admin","token":"abc.def"}`, w.Body.String())
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
	}{
		{"missing header", "", nil},
		{"wrong scheme", "Basic abc", nil},
		{"no token", "Bearer", nil},
		{"rejected token", "Bearer abc", errors.New("signed out")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&stubAuth{err: tt.err, claims: &utils.JWTClaims{Role: model.RoleAdmin}})
			if tt.err == nil {
				r = newRouter(&stubAuth{err: errors.New("should not be called")})
			}

			w := doGet(r, tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	admin := newRouter(&stubAuth{claims: &utils.JWTClaims{AdminID: 1, Role: model.RoleAdmin}}, AdminMiddleware())
	assert.Equal(t, http.StatusOK, doGet(admin, "Bearer t").Code)

	other := newRouter(&stubAuth{claims: &utils.JWTClaims{AdminID: 1, Role: "viewer"}}, AdminMiddleware())
	assert.Equal(t, http.StatusForbidden, doGet(other, "Bearer t").Code)
}

func TestAdminMiddleware_WithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AdminMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusForbidden, doGet(r, "").Code)
}
