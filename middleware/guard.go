package middleware

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	authcore "github.com/cobaltadmin/authcore"
)

// SessionBinder builds the request's session context. Cookie deployments
// bind a per-request cookie store here; API deployments look up the
// server-side store for the request's session ID.
type SessionBinder func(w http.ResponseWriter, r *http.Request) *authcore.SessionContext

// GuardConfig wires a Guard.
type GuardConfig struct {
	Sessions SessionBinder
	Routes   *RouteTable

	// LoginPath receives unauthenticated private requests. The original
	// path rides along as ?next=. Defaults to "/login".
	LoginPath string
	// HomePath receives authenticated users hitting a public-redirect
	// route. Defaults to "/".
	HomePath string

	Logger zerolog.Logger
}

// Guard returns the route-guarding middleware.
//
// Each request is classified, resolved at most once (with one refresh
// attempt folded in when the credential is expired), then dispatched:
// private routes redirect anonymous sessions to the login page, public
// routes pass everyone, public-redirect routes bounce authenticated
// users home. An authenticated identity missing a route's declared role
// is sent home too, never to an error page. Resolution panics and store
// failures degrade to anonymous, which for a private route means
// redirect: uncertainty fails closed.
func Guard(cfg GuardConfig) func(http.Handler) http.Handler {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.HomePath == "" {
		cfg.HomePath = "/"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Routes.Allowed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			class := cfg.Routes.Classify(r.URL.Path)
			if cfg.Sessions == nil {
				// No session wiring at all: only public routes work.
				if class == RoutePrivate {
					redirectToLogin(w, r, cfg.LoginPath)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			sc := cfg.Sessions(w, r)
			id := resolve(sc, r, cfg.Logger)

			ctx := authcore.WithSession(r.Context(), sc)
			ctx = authcore.WithIdentity(ctx, id)
			r = r.WithContext(ctx)

			switch class {
			case RoutePrivate:
				if id == nil {
					redirectToLogin(w, r, cfg.LoginPath)
					return
				}
				if role := cfg.Routes.RoleFor(r.URL.Path); role != "" && !id.HasRole(role) {
					cfg.Logger.Info().Str("path", r.URL.Path).Str("role", id.Role).Msg("role mismatch, redirecting home")
					// Guard against a loop when home is itself role-gated.
					if r.URL.Path != cfg.HomePath {
						http.Redirect(w, r, cfg.HomePath, http.StatusSeeOther)
						return
					}
				}
			case RoutePublicRedirect:
				if id != nil {
					http.Redirect(w, r, cfg.HomePath, http.StatusSeeOther)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolve runs one EnsureFresh, mapping every failure shape to an
// anonymous session. A panic below must not take the request down.
func resolve(sc *authcore.SessionContext, r *http.Request, log zerolog.Logger) (id *authcore.Identity) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("session resolution panicked")
			id = nil
		}
	}()

	id, err := sc.EnsureFresh(r.Context())
	if err != nil {
		return nil
	}
	return id
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	target := loginPath
	if r.URL.Path != "/" && r.URL.Path != loginPath {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
