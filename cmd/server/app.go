package main

import (
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/transitrack/transitrack/auth"
	"github.com/transitrack/transitrack/i18n"
	"github.com/transitrack/transitrack/internal/handlers"
	"github.com/transitrack/transitrack/internal/policy"
	"github.com/transitrack/transitrack/view"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
//
// Routing follows a strict page-tree rule: signed-out visitors only reach the
// landing and auth pages, riders only their tree, the administrator only the
// admin tree plus the shared profile page. Everything else redirects to /,
// which itself forwards signed-in visitors to their role's home.
type App struct {
	mux       *http.ServeMux
	db        *gorm.DB
	routerCfg *policy.RouterConfig
}

// NewApp creates a new application with all routes configured.
// csrfOn controls whether templates render the hidden CSRF field.
func NewApp(db *gorm.DB, routerCfg *policy.RouterConfig, csrfOn bool) *App {
	app := &App{
		mux:       http.NewServeMux(),
		db:        db,
		routerCfg: routerCfg,
	}

	// Resolver callbacks keep the view package free of policy imports.
	view.SetRoleResolver(func(r *http.Request) string {
		return routerCfg.RouteGate.Role(r).String()
	})
	view.SetLangResolver(func(r *http.Request) string {
		return i18n.LangFromContext(r.Context())
	})
	view.SetFlashResolver(handlers.PopFlash)
	if csrfOn {
		view.SetCSRFResolver(func(r *http.Request) template.HTML {
			return csrf.TemplateField(r)
		})
	}

	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth.Middleware(withPreferences(a.mux)).ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	rg := a.routerCfg.RouteGate
	ah := a.routerCfg.AuthHandler

	// ─────────────────────────────────────────────────────────────────────────
	// Public pages (signed-in visitors are forwarded to their role's home)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /{$}", rg.PublicOnly(http.HandlerFunc(a.routerCfg.LandingHandler.Index)))
	a.mux.Handle("GET /auth", rg.PublicOnly(http.HandlerFunc(ah.Auth)))
	a.mux.Handle("POST /auth", rg.PublicOnly(http.HandlerFunc(ah.Auth)))
	a.mux.HandleFunc("GET /logout", ah.Logout)
	a.mux.HandleFunc("POST /logout", ah.Logout)

	// ─────────────────────────────────────────────────────────────────────────
	// Rider tree
	// ─────────────────────────────────────────────────────────────────────────
	dh := a.routerCfg.DashboardHandler
	rh := a.routerCfg.RouteHandler
	ch := a.routerCfg.CommentHandler
	nh := a.routerCfg.NotificationHandler

	a.mux.Handle("GET /dashboard", rg.RequireUser(http.HandlerFunc(dh.Index)))
	a.mux.Handle("GET /routes", rg.RequireUser(http.HandlerFunc(rh.UserList)))
	a.mux.Handle("GET /notifications", rg.RequireUser(http.HandlerFunc(nh.UserList)))
	a.mux.Handle("GET /comments", rg.RequireUser(http.HandlerFunc(ch.UserList)))

	// Comment writes admit both roles; ownership is enforced in the handler so
	// the admin can moderate from their own tree.
	a.mux.Handle("POST /comments/save", rg.RequireAuthenticated(http.HandlerFunc(ch.Save)))
	a.mux.Handle("POST /comments/{id}/delete", rg.RequireAuthenticated(http.HandlerFunc(ch.Delete)))

	// ─────────────────────────────────────────────────────────────────────────
	// Shared profile page
	// ─────────────────────────────────────────────────────────────────────────
	ph := a.routerCfg.ProfileHandler
	a.mux.Handle("GET /profile", rg.RequireAuthenticated(http.HandlerFunc(ph.Show)))
	a.mux.Handle("POST /profile", rg.RequireAuthenticated(http.HandlerFunc(ph.Save)))
	a.mux.Handle("POST /profile/password", rg.RequireAuthenticated(http.HandlerFunc(ph.ChangePassword)))

	// ─────────────────────────────────────────────────────────────────────────
	// Admin tree
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /admin", rg.RequireAdmin(http.HandlerFunc(rh.AdminList)))
	a.mux.Handle("POST /admin/routes/save", rg.RequireAdmin(http.HandlerFunc(rh.Save)))
	a.mux.Handle("POST /admin/routes/{id}/delete", rg.RequireAdmin(http.HandlerFunc(rh.Delete)))
	a.mux.Handle("POST /admin/schedules/save", rg.RequireAdmin(http.HandlerFunc(rh.SaveSchedule)))
	a.mux.Handle("POST /admin/schedules/{id}/delete", rg.RequireAdmin(http.HandlerFunc(rh.DeleteSchedule)))

	a.mux.Handle("GET /admin/comments", rg.RequireAdmin(http.HandlerFunc(ch.AdminList)))

	a.mux.Handle("GET /admin/notifications", rg.RequireAdmin(http.HandlerFunc(nh.AdminList)))
	a.mux.Handle("POST /admin/notifications/save", rg.RequireAdmin(http.HandlerFunc(nh.Save)))
	a.mux.Handle("POST /admin/notifications/{id}/delete", rg.RequireAdmin(http.HandlerFunc(nh.Delete)))

	// ─────────────────────────────────────────────────────────────────────────
	// JSON API
	// ─────────────────────────────────────────────────────────────────────────
	// The handler does its own auth check (401 JSON, not a redirect).
	a.mux.HandleFunc("POST /api/account/delete", a.routerCfg.AccountHandler.Delete)
	a.mux.HandleFunc("OPTIONS /api/account/delete", a.routerCfg.AccountHandler.Delete)

	// ─────────────────────────────────────────────────────────────────────────
	// Static files and the unmatched-path rule
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// "/" only fires for paths no other pattern claimed; "GET /{$}" owns the
	// exact root.
	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

// withPreferences injects the language preference from cookie, query or the
// Accept-Language header.
func withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); q != "" {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
			})
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}
