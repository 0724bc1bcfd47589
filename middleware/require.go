package middleware

import (
	"encoding/json"
	"net/http"

	authcore "github.com/cobaltadmin/authcore"
)

// RequireRole rejects requests whose identity does not satisfy role.
// It answers with status codes, so it belongs on API chains (after
// RequireAPI); browser routes declare their role on the RouteTable and
// get redirected by Guard instead. Admins pass every check.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := authcore.IdentityFrom(r.Context())
			if id == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !id.HasRole(role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPI guards API routes: resolution failures answer 401 JSON
// instead of redirecting, since the caller is a program, not a browser.
func RequireAPI(sessions SessionBinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := sessions(w, r)
			id, err := sc.EnsureFresh(r.Context())
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}

			ctx := authcore.WithSession(r.Context(), sc)
			ctx = authcore.WithIdentity(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
