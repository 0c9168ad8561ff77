package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/ganot/taskhours/internal/domain/user"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const principalKey contextKey = iota

// getPrincipal extracts the caller from context.
func getPrincipal(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey).(user.Principal)
	return p, ok
}

// KeyResolver resolves the caller behind a bearer API key.
type KeyResolver interface {
	ResolveAPIKey(ctx context.Context, raw string) (user.Principal, error)
}

// authMiddleware implements bearer API key authentication as MCP middleware.
func authMiddleware(resolver KeyResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Protocol handshakes carry no caller.
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			p, err := resolver.ResolveAPIKey(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}

			ctx = context.WithValue(ctx, principalKey, p)
			return next(ctx, method, req)
		}
	}
}

// fixedPrincipalMiddleware injects the same caller into every request.
func fixedPrincipalMiddleware(p user.Principal) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx = context.WithValue(ctx, principalKey, p)
			return next(ctx, method, req)
		}
	}
}
