package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/elvenwooddev-web/designquote/internal/platform/httpx"
)

type contextKey string

const userKey contextKey = "auth.user"

// UserFromContext returns the authenticated user set by RequireUser.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userKey).(*User)
	return user, ok
}

// WithUser injects a user into the context. Exposed for handler tests.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// RequireUser rejects requests without a valid bearer token and loads the
// user into the request context.
func (s *Service) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		claims, err := s.VerifyToken(r.Context(), tokenString)
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		user, err := s.CurrentUser(r.Context(), claims)
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
