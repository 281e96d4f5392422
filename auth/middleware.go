package auth

import (
	"context"
	"net/http"
	"strings"
	"tpa-lab/domain"
)

type contextKey string

const (
	PlayerIDKey    contextKey = "player_id"
	PermissionsKey contextKey = "permissions"
)

// Middleware validates the session token and injects the player identity into the request context.
// Browsers cannot set headers on a websocket upgrade, so a "token" query parameter is accepted too.
func Middleware(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				http.Error(w, "authorization token is missing", http.StatusUnauthorized)
				return
			}
			claims, err := issuer.ValidateToken(tokenStr)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), PlayerIDKey, claims.PlayerID)
			ctx = context.WithValue(ctx, PermissionsKey, claims.Permissions)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission rejects callers lacking the permission. It is a no-op when disabled.
func RequirePermission(enabled bool, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasPermission(PermissionsFromContext(r.Context()), permission) {
				http.Error(w, "You don't have permission to do that.", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func PlayerFromContext(ctx context.Context) (domain.ActorID, bool) {
	id, ok := ctx.Value(PlayerIDKey).(domain.ActorID)
	return id, ok
}

func PermissionsFromContext(ctx context.Context) []string {
	perms, _ := ctx.Value(PermissionsKey).([]string)
	return perms
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
