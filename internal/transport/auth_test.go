package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/stretchr/testify/require"
)

type testAuthenticator struct {
	sessions map[string]user.Principal
	keys     map[string]user.Principal
	err      error
}

func (a *testAuthenticator) ResolveSession(_ context.Context, token string) (user.Principal, error) {
	if a.err != nil {
		return user.Principal{}, a.err
	}
	p, ok := a.sessions[token]
	if !ok {
		return user.Principal{}, user.ErrUnauthenticated
	}
	return p, nil
}

func (a *testAuthenticator) ResolveAPIKey(_ context.Context, raw string) (user.Principal, error) {
	if a.err != nil {
		return user.Principal{}, a.err
	}
	p, ok := a.keys[raw]
	if !ok {
		return user.Principal{}, user.ErrUnauthenticated
	}
	return p, nil
}

var (
	adminPrincipal  = user.Principal{TenantID: "tenant1", UserID: "admin1", Role: user.RoleAdmin}
	memberPrincipal = user.Principal{TenantID: "tenant1", UserID: "member1", Role: user.RoleMember}
)

func newTestAuthenticator() *testAuthenticator {
	return &testAuthenticator{
		sessions: map[string]user.Principal{"admin-cookie": adminPrincipal, "member-cookie": memberPrincipal},
		keys:     map[string]user.Principal{"member-key": memberPrincipal},
	}
}

func principalEcho(t *testing.T, want user.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, want, p)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	handler := AuthMiddleware(newTestAuthenticator())(principalEcho(t, adminPrincipal))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "admin-cookie"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_BearerFallback(t *testing.T) {
	handler := AuthMiddleware(newTestAuthenticator())(principalEcho(t, memberPrincipal))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "expired"})
	req.Header.Set("Authorization", "Bearer member-key")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_Invalid(t *testing.T) {
	handler := AuthMiddleware(newTestAuthenticator())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"message":"not authenticated"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_ResolverFailure(t *testing.T) {
	auth := &testAuthenticator{err: errors.New("database is locked")}
	handler := AuthMiddleware(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "admin-cookie"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAPIKeyMiddleware(t *testing.T) {
	handler := APIKeyMiddleware(newTestAuthenticator())(principalEcho(t, memberPrincipal))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer member-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Cookies are not accepted on the MCP endpoint.
	req = httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "admin-cookie"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(user.Role.CanManageProjects)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, tc := range []struct {
		name      string
		principal *user.Principal
		want      int
	}{
		{name: "admin", principal: &adminPrincipal, want: http.StatusOK},
		{name: "member", principal: &memberPrincipal, want: http.StatusForbidden},
		{name: "anonymous", want: http.StatusUnauthorized},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), *tc.principal))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, tc.want, rec.Code)
		})
	}
}
