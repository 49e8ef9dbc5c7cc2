package policy

import (
	"time"

	"github.com/transitrack/transitrack/gate"
	"github.com/transitrack/transitrack/internal/config"
	"github.com/transitrack/transitrack/internal/handlers"
	"gorm.io/gorm"
)

// RouterConfig holds the configured gate, middleware and handlers for the
// application router.
type RouterConfig struct {
	// Gate provides authorization checks; RouteGate turns them into
	// redirect middleware per the page-tree rules.
	Gate      *gate.Gate[uint]
	RouteGate *RouteGate
	// CacheResolver is exposed so handlers can invalidate roles when an
	// account changes.
	CacheResolver *gate.CachedResolver[uint]

	AuthHandler         *handlers.AuthHandler
	LandingHandler      *handlers.LandingHandler
	DashboardHandler    *handlers.DashboardHandler
	RouteHandler        *handlers.RouteHandler
	CommentHandler      *handlers.CommentHandler
	NotificationHandler *handlers.NotificationHandler
	ProfileHandler      *handlers.ProfileHandler
	AccountHandler      *handlers.AccountHandler
}

// NewRouterConfig wires together the role resolver, authorization gate,
// policies and handlers.
func NewRouterConfig(db *gorm.DB, cfg *config.Config) *RouterConfig {
	ttl := time.Duration(cfg.Auth.RoleCacheTTL) * time.Second
	cached := gate.NewCachedResolver[uint](NewDBRoleResolver(db, cfg.Auth.AdminEmail), ttl)

	g := gate.NewGate[uint](cached)
	// Comments are the only user-owned mutable resource; edits require the
	// author, deletes the author or the administrator (gate admin override).
	g.Register("comment", NewOwnershipPolicy())

	homeFor := func(email string) string {
		return HomePath(RoleForEmail(cfg.Auth.AdminEmail, email))
	}

	return &RouterConfig{
		Gate:          g,
		RouteGate:     NewRouteGate(g),
		CacheResolver: cached,

		AuthHandler:         handlers.NewAuthHandler(db, homeFor, cached.Invalidate),
		LandingHandler:      handlers.NewLandingHandler(),
		DashboardHandler:    handlers.NewDashboardHandler(db),
		RouteHandler:        handlers.NewRouteHandler(db),
		CommentHandler:      handlers.NewCommentHandler(db, g),
		NotificationHandler: handlers.NewNotificationHandler(db),
		ProfileHandler:      handlers.NewProfileHandler(db),
		AccountHandler:      handlers.NewAccountHandler(db, cached.Invalidate),
	}
}
