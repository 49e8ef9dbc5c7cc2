package handlers

import (
	"net/http"
	"time"

	"github.com/transitrack/transitrack/auth"
	"github.com/transitrack/transitrack/internal/models"
	"github.com/transitrack/transitrack/view"
	"gorm.io/gorm"
)

// DashboardHandler renders the signed-in user's overview page with counts of
// routes, active notifications and the user's own comments.
type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var routeCount, scheduleCount, notificationCount, commentCount int64
	h.db.Model(&models.Route{}).Count(&routeCount)
	h.db.Model(&models.Schedule{}).Count(&scheduleCount)
	h.db.Model(&models.Notification{}).
		Where("active_until IS NULL OR active_until >= ?", time.Now()).
		Count(&notificationCount)
	h.db.Model(&models.Comment{}).Where("user_id = ?", uid).Count(&commentCount)

	var latest []models.Notification
	h.db.Where("active_until IS NULL OR active_until >= ?", time.Now()).
		Order("sent_at DESC").Limit(3).Find(&latest)

	view.Render(w, r, "dashboard.html", map[string]any{
		"RouteCount":          routeCount,
		"ScheduleCount":       scheduleCount,
		"NotificationCount":   notificationCount,
		"CommentCount":        commentCount,
		"LatestNotifications": latest,
	})
}
