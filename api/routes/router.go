package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/connectedautocare/console-gateway/api/controllers"
	"github.com/connectedautocare/console-gateway/api/middleware"
	"github.com/connectedautocare/console-gateway/internal/session"
	"github.com/connectedautocare/console-gateway/pkg/config"
	"github.com/connectedautocare/console-gateway/pkg/enums"
	"github.com/connectedautocare/console-gateway/pkg/logger"
	"github.com/connectedautocare/console-gateway/pkg/platform"
)

// NewRouter wires the console gateway's full HTTP surface: public pages and
// auth endpoints, guarded console pages, the token-gated upstream proxy,
// and the operational endpoints.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	mgr *session.Manager,
	client *platform.Client,
	guard *middleware.Guard,
	storePinger controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, storePinger, client))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(mgr, cfg.Cookie, logg))
		r.Post("/register", controllers.AuthRegister(mgr, cfg.Cookie, logg))
		r.Post("/logout", controllers.AuthLogout(mgr, cfg.Cookie, logg))
		r.Get("/session", controllers.AuthSession(mgr, cfg.Cookie, logg))
		r.With(guard.RequireSession).Post("/change-password", controllers.AuthChangePassword(mgr, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/quote", controllers.PublicQuote(client, logg))
		r.Post("/contact", controllers.PublicContact(client, logg))

		r.Route("/console", func(r chi.Router) {
			r.Use(guard.RequireSession)

			r.Get("/dashboard/stats", controllers.DashboardStats(client, mgr, logg))

			proxy := controllers.ConsoleProxy(client, mgr, logg)
			r.With(guard.RequireRole(enums.UserRoleAdmin)).HandleFunc("/users", proxy)
			r.With(guard.RequireRole(enums.UserRoleAdmin)).HandleFunc("/users/*", proxy)
			for _, resource := range []string{
				"coverage-levels",
				"vehicle-classes",
				"rate-tables",
				"multipliers",
				"customers",
				"policies",
				"settings",
			} {
				r.HandleFunc("/"+resource, proxy)
				r.HandleFunc("/"+resource+"/*", proxy)
			}
		})
	})

	// Console pages. Public-only pages bounce signed-in users to their
	// landing route; guarded pages bounce anonymous users to login.
	r.Group(func(r chi.Router) {
		r.Use(guard.PublicOnly)
		r.Get("/login", controllers.ConsolePage("Sign in", "login"))
		r.Get("/register", controllers.ConsolePage("Create account", "register"))
	})

	r.Group(func(r chi.Router) {
		r.Use(guard.RequireAuth)
		r.Get("/", controllers.ConsolePage("Dashboard", "dashboard"))
		r.Get("/dashboard", controllers.ConsolePage("Dashboard", "dashboard"))
		r.Get("/quotes/new", controllers.ConsolePage("New quote", "quotes-new"))
		r.Get("/policies", controllers.ConsolePage("Policies", "policies"))
		r.Get("/customers", controllers.ConsolePage("Customers", "customers"))
		r.Get("/settings", controllers.ConsolePage("Settings", "settings"))
	})

	return r
}
