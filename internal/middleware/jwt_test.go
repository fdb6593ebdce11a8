package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
	seen   string
}

func (s *stubValidator) ValidateToken(ctx context.Context, token string) (*models.JWTClaims, error) {
	s.seen = token
	return s.claims, s.err
}

func protectedRouter(validator tokenValidator, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(validator)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims, _ := CurrentUser(c)
		c.String(http.StatusOK, claims.Username)
	})
	r.GET("/students/:admission_number", handlers...)
	return r
}

func TestJWTAcceptsBearerToken(t *testing.T) {
	validator := &stubValidator{claims: &models.JWTClaims{Username: "librarian", Role: models.RoleLibrarian}}
	r := protectedRouter(validator)

	req := httptest.NewRequest(http.MethodGet, "/students/S1", nil)
	req.Header.Set("Authorization", "Bearer abc.def")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "librarian", rec.Body.String())
	assert.Equal(t, "abc.def", validator.seen)
}

func TestJWTRejectsMissingOrRevokedTokens(t *testing.T) {
	cases := map[string]struct {
		header    string
		validator *stubValidator
	}{
		"missing":   {header: "", validator: &stubValidator{}},
		"malformed": {header: "Token abc", validator: &stubValidator{}},
		"revoked":   {header: "Bearer abc", validator: &stubValidator{err: appErrors.Clone(appErrors.ErrUnauthorized, "token has been revoked")}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := protectedRouter(tc.validator)
			req := httptest.NewRequest(http.MethodGet, "/students/S1", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRBACAllowsRolesAndSelf(t *testing.T) {
	cases := []struct {
		name   string
		claims *models.JWTClaims
		path   string
		status int
	}{
		{"teacher allowed", &models.JWTClaims{Username: "t1", Role: models.RoleTeacher}, "/students/S1", http.StatusOK},
		{"student self", &models.JWTClaims{Username: "S1", Role: models.RoleStudent}, "/students/S1", http.StatusOK},
		{"student other", &models.JWTClaims{Username: "S1", Role: models.RoleStudent}, "/students/S2", http.StatusForbidden},
		{"librarian denied", &models.JWTClaims{Username: "lib", Role: models.RoleLibrarian}, "/students/S1", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := protectedRouter(&stubValidator{claims: tc.claims}, RBAC(string(models.RoleAdmin), string(models.RoleTeacher), Self))
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.Header.Set("Authorization", "Bearer token")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRBACWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
