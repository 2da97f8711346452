// Package auth carries the identity of the requesting user through the
// request context. The service trusts the identity it is handed; actual
// authentication happens upstream.
package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

// UserHeader is the trusted header carrying the authenticated user id.
const UserHeader = "X-User-Id"

// WithUser returns a context carrying the given user id.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// CurrentUser returns the user id carried by the context, or the empty
// string when the request is anonymous.
func CurrentUser(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Middleware copies the trusted identity header into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(UserHeader)); id != "" {
			r = r.WithContext(WithUser(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
