package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/connectedautocare/console-gateway/api/responses"
	"github.com/connectedautocare/console-gateway/internal/session"
	"github.com/connectedautocare/console-gateway/pkg/auth"
	"github.com/connectedautocare/console-gateway/pkg/config"
	"github.com/connectedautocare/console-gateway/pkg/enums"
	pkgerrors "github.com/connectedautocare/console-gateway/pkg/errors"
	"github.com/connectedautocare/console-gateway/pkg/logger"
)

const (
	loginPath      = "/login"
	returnURLParam = "returnUrl"
)

// Guard enforces the console's access rules at the routing layer. Pages use
// redirects so the browser lands on the login screen with a way back; API
// routes answer with the JSON error envelope instead.
type Guard struct {
	mgr     *session.Manager
	cookies config.CookieConfig
	logg    *logger.Logger
}

// GuardParams bundles the dependencies required to build a route guard.
type GuardParams struct {
	Manager *session.Manager
	Cookies config.CookieConfig
	Logger  *logger.Logger
}

// NewGuard constructs a route guard.
func NewGuard(params GuardParams) (*Guard, error) {
	if params.Manager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Cookies.Secret == "" {
		return nil, fmt.Errorf("cookie secret is required")
	}
	return &Guard{mgr: params.Manager, cookies: params.Cookies, logg: params.Logger}, nil
}

// RequireAuth protects a console page. An anonymous or invalid session is
// sent to the login page carrying the original path so login can return
// there; a session whose token no longer verifies is torn down first.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, err := auth.SessionFromRequest(g.cookies, r)
		if err != nil || claims == nil {
			g.redirectToLogin(w, r)
			return
		}

		state := g.mgr.Resolve(ctx, claims.SessionID)
		if !state.Authenticated() {
			auth.ClearSessionCookie(w, g.cookies)
			g.redirectToLogin(w, r)
			return
		}

		ctx = WithSessionID(ctx, claims.SessionID)
		ctx = WithUser(ctx, state.User)
		if g.logg != nil {
			ctx = g.logg.WithSessionID(ctx, claims.SessionID)
			ctx = g.logg.WithUserID(ctx, state.User.ID)
			ctx = g.logg.WithUserRole(ctx, string(state.User.Role))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PublicOnly wraps pages like login and register that make no sense for a
// signed-in user. An authenticated session is bounced to the requested
// return URL, or to its role's landing page.
func (g *Guard) PublicOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, err := auth.SessionFromRequest(g.cookies, r)
		if err == nil && claims != nil {
			state := g.mgr.Resolve(ctx, claims.SessionID)
			if state.Authenticated() {
				http.Redirect(w, r, g.postLoginTarget(r, state.User.Role), http.StatusSeeOther)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession protects a console API route. Failures answer 401 with the
// JSON envelope; the fetch layer in the console reacts to that, not to a
// redirect.
func (g *Guard) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, err := auth.SessionFromRequest(g.cookies, r)
		if err != nil || claims == nil {
			responses.WriteError(ctx, g.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		state := g.mgr.Resolve(ctx, claims.SessionID)
		if !state.Authenticated() {
			auth.ClearSessionCookie(w, g.cookies)
			responses.WriteError(ctx, g.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
			return
		}

		ctx = WithSessionID(ctx, claims.SessionID)
		ctx = WithUser(ctx, state.User)
		if g.logg != nil {
			ctx = g.logg.WithSessionID(ctx, claims.SessionID)
			ctx = g.logg.WithUserID(ctx, state.User.ID)
			ctx = g.logg.WithUserRole(ctx, string(state.User.Role))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route on the role hierarchy. It runs after RequireAuth
// or RequireSession, so a missing user means the chain is miswired and reads
// as forbidden.
func (g *Guard) RequireRole(required enums.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			user := UserFromContext(ctx)
			if !session.HasRole(user, required) {
				responses.WriteError(ctx, g.logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := loginPath
	if ret := returnURL(r); ret != "" && ret != loginPath {
		target = loginPath + "?" + url.Values{returnURLParam: {ret}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (g *Guard) postLoginTarget(r *http.Request, role enums.UserRole) string {
	if ret := r.URL.Query().Get(returnURLParam); isLocalPath(ret) {
		return ret
	}
	return session.LandingPath(role)
}

func returnURL(r *http.Request) string {
	ret := r.URL.Path
	if r.URL.RawQuery != "" {
		ret += "?" + r.URL.RawQuery
	}
	return ret
}

// isLocalPath accepts only same-origin absolute paths, so the return URL
// can never bounce the browser to another host.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//")
}
