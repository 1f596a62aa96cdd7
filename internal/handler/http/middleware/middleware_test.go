package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/auth"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(svc jwt.Service, mws ...func(http.Handler) http.Handler) http.Handler {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, _ := ClaimsFromContext(r.Context())
		w.Write([]byte(c.UserID))
	})
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return jwtauth.Verifier(svc.JWTAuth())(AuthRequired(h))
}

func do(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func issue(t *testing.T, svc jwt.Service, c auth.Claims) string {
	t.Helper()
	token, _, err := svc.IssueAccessToken(c, time.Hour)
	require.NoError(t, err)
	return token
}

func TestAuthRequired(t *testing.T) {
	svc := jwt.NewJWTService("secret")
	h := protected(svc)

	assert.Equal(t, http.StatusUnauthorized, do(t, h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, "garbage").Code)

	rec := do(t, h, issue(t, svc, auth.Claims{UserID: "u1", CompanyID: "c1", Role: auth.RoleOwner}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())

	rec = do(t, h, issue(t, svc, auth.Claims{UserID: "u1", Role: auth.RoleOwner}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	svc := jwt.NewJWTService("secret")
	h := protected(svc, RequirePermission(auth.PermissionPayrollProcess))

	assert.Equal(t, http.StatusOK, do(t, h, issue(t, svc, auth.Claims{UserID: "u1", CompanyID: "c1", Role: auth.RoleOwner})).Code)
	rec := do(t, h, issue(t, svc, auth.Claims{UserID: "u1", CompanyID: "c1", Role: auth.RoleEmployee}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"FORBIDDEN"`)
	assert.Contains(t, rec.Body.String(), "employee requires payroll.process")
}

func TestRequireEmployee(t *testing.T) {
	svc := jwt.NewJWTService("secret")
	h := protected(svc, RequireEmployee)

	assert.Equal(t, http.StatusForbidden, do(t, h, issue(t, svc, auth.Claims{UserID: "u1", CompanyID: "c1", Role: auth.RoleOwner})).Code)
	assert.Equal(t, http.StatusOK, do(t, h, issue(t, svc, auth.Claims{UserID: "u1", CompanyID: "c1", EmployeeID: "e1", Role: auth.RoleEmployee})).Code)
}
