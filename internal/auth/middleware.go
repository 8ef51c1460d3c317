package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vidspark/vidspark/internal/platform/httpx"
)

type contextKey struct{}

var claimsKey contextKey

// Middleware gates requests on bearer-token authentication and role claims.
type Middleware struct {
	Tokens *TokenManager
	Logger *slog.Logger
}

// RequireAuth verifies the Authorization bearer token and attaches the
// extracted claims to the request context.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}
		claims, err := m.Tokens.Verify(token)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects identities whose role claim is not privileged. It must
// run inside RequireAuth.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		if !claims.IsAdmin() {
			if m.Logger != nil {
				m.Logger.Warn("admin access denied", slog.Int64("account_id", claims.AccountID), slog.String("path", r.URL.Path))
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext retrieves the authenticated identity set by RequireAuth.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}

// ContextWithClaims attaches an identity the way RequireAuth does.
func ContextWithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
