package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWT(t *testing.T) jwt.Service {
	t.Helper()
	svc, err := jwt.NewJWTService("middleware-test-secret", "1h", "24h")
	require.NoError(t, err)
	return svc
}

func chain(svc jwt.Service, h http.Handler) http.Handler {
	return jwtauth.Verifier(svc.JWTAuth())(AuthRequired(h))
}

func TestAuthRequired(t *testing.T) {
	svc := newJWT(t)
	access, _, err := svc.GenerateAccessToken(user.User{ID: "u-1", EmployeeID: "EMP-1", Email: "a@b.co", Role: user.RoleTeamLead})
	require.NoError(t, err)
	refresh, _, err := svc.GenerateRefreshToken("u-1")
	require.NoError(t, err)

	var got user.Session
	h := chain(svc, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"access token", "Bearer " + access, http.StatusNoContent},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}

	assert.Equal(t, user.Session{UserID: "u-1", EmployeeID: "EMP-1", Role: user.RoleTeamLead}, got)
}

func TestRequirePermission(t *testing.T) {
	h := RequirePermission(user.PermissionBillDecide)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for role, want := range map[user.Role]int{
		user.RoleAdmin:    http.StatusNoContent,
		user.RoleTeamLead: http.StatusForbidden,
		user.RoleEmployee: http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPut, "/", nil)
		req = req.WithContext(WithSession(req.Context(), user.Session{UserID: "u", EmployeeID: "E", Role: role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
