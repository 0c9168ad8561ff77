package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ganot/taskhours/internal/domain/user"
)

type principalKey struct{}

// Authenticator resolves the caller behind a session cookie or bearer key.
type Authenticator interface {
	ResolveSession(ctx context.Context, token string) (user.Principal, error)
	ResolveAPIKey(ctx context.Context, raw string) (user.Principal, error)
}

// PrincipalFromContext returns the authenticated caller, if present.
func PrincipalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok
}

// WithPrincipal stores the caller in ctx.
func WithPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// AuthMiddleware requires a valid session cookie or, failing that, a bearer
// API key.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				p   user.Principal
				err = user.ErrUnauthenticated
			)
			if token := sessionToken(r); token != "" {
				p, err = auth.ResolveSession(r.Context(), token)
			}
			if errors.Is(err, user.ErrUnauthenticated) {
				if key := bearerToken(r); key != "" {
					p, err = auth.ResolveAPIKey(r.Context(), key)
				}
			}
			if err != nil {
				if errors.Is(err, user.ErrUnauthenticated) {
					writeMessage(w, http.StatusUnauthorized, "not authenticated")
					return
				}
				writeMessage(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// APIKeyMiddleware requires a bearer API key. It guards the MCP endpoint.
func APIKeyMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := bearerToken(r)
			if key == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			p, err := auth.ResolveAPIKey(r.Context(), key)
			if err != nil {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole rejects callers whose role fails allow.
func RequireRole(allow func(user.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !allow(p.Role) {
				writeMessage(w, http.StatusForbidden, user.ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
