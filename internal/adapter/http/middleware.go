package adapthttp

import (
	"context"
	"net/http"
)

type contextKey string

const userContextKey contextKey = "user"

// userMiddleware scopes each request to a user. Identity comes from the
// forward-auth Remote-User header set by the proxy in front of the service;
// the engine itself does no identity management.
func (s *Server) userMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("Remote-User")
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userID returns the user the request is scoped to.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userContextKey).(string)
	return id
}
