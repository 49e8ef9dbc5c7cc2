package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/transitrack/transitrack/internal/models"
	"github.com/transitrack/transitrack/validation"
	"github.com/transitrack/transitrack/view"
	"gorm.io/gorm"
)

// NotificationHandler serves the rider alert feed and the admin alert
// manager. Riders only see alerts that have not expired; the admin page
// shows everything.
type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// notificationRow pairs an alert with its route's display name for templates.
type notificationRow struct {
	models.Notification
	RouteName string
}

// UserList renders active alerts, newest first. An alert with no expiry is
// always active; the expiry instant itself still counts as active.
func (h *NotificationHandler) UserList(w http.ResponseWriter, r *http.Request) {
	var notifications []models.Notification
	err := h.db.Where("active_until IS NULL OR active_until >= ?", time.Now()).
		Order("sent_at DESC").
		Find(&notifications).Error
	if err != nil {
		http.Error(w, "failed to load notifications", http.StatusInternalServerError)
		return
	}
	view.Render(w, r, "notifications/index.html", map[string]any{
		"Notifications": h.withRouteNames(notifications),
	})
}

// AdminList renders every alert with the publish form. ?edit=<id> preloads
// the form for editing.
func (h *NotificationHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	var notifications []models.Notification
	if err := h.db.Order("sent_at DESC").Find(&notifications).Error; err != nil {
		http.Error(w, "failed to load notifications", http.StatusInternalServerError)
		return
	}
	var routes []models.Route
	h.db.Order("name ASC").Find(&routes)

	data := map[string]any{
		"Notifications": h.withRouteNames(notifications),
		"Routes":        routes,
		"Types":         models.NotificationTypes,
		"Now":           time.Now(),
	}
	if id, err := strconv.Atoi(r.URL.Query().Get("edit")); err == nil && id > 0 {
		var n models.Notification
		if err := h.db.First(&n, id).Error; err == nil {
			data["Editing"] = &n
			if n.ActiveUntil != nil {
				data["EditingExpiry"] = n.ActiveUntil.Format("2006-01-02")
			}
			if n.RouteID != nil {
				data["EditingRouteID"] = *n.RouteID
			}
		}
	}
	view.Render(w, r, "admin/notifications.html", data)
}

// withRouteNames resolves the referenced route names for display. An alert
// without a route shows as applying to all routes.
func (h *NotificationHandler) withRouteNames(notifications []models.Notification) []notificationRow {
	ids := make([]uint, 0, len(notifications))
	for _, n := range notifications {
		if n.RouteID != nil {
			ids = append(ids, *n.RouteID)
		}
	}
	names := make(map[uint]string, len(ids))
	if len(ids) > 0 {
		var routes []models.Route
		h.db.Where("id IN ?", ids).Find(&routes)
		for _, route := range routes {
			names[route.ID] = route.Name
		}
	}
	rows := make([]notificationRow, 0, len(notifications))
	for _, n := range notifications {
		row := notificationRow{Notification: n}
		if n.RouteID != nil {
			row.RouteName = names[*n.RouteID]
		}
		rows = append(rows, row)
	}
	return rows
}

// Save publishes or updates an alert. The expiry date comes in as a plain
// date and is stretched to the end of that day so it stays visible through it.
func (h *NotificationHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.FormValue("id"))
	title := r.FormValue("title")
	message := r.FormValue("message")
	kind := r.FormValue("type")

	v := make(validation.Violations)
	validation.Required("title", title, v)
	validation.Required("message", message, v)
	validation.OneOf("type", kind, models.NotificationTypes, v)
	if !v.Empty() {
		SetFlashError(w, "Title, message and a valid type are required")
		http.Redirect(w, r, "/admin/notifications", http.StatusSeeOther)
		return
	}

	var routeID *uint
	if raw := r.FormValue("route_id"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			u := uint(n)
			routeID = &u
		}
	}

	var activeUntil *time.Time
	if raw := r.FormValue("active_until"); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			SetFlashError(w, "Invalid expiry date")
			http.Redirect(w, r, "/admin/notifications", http.StatusSeeOther)
			return
		}
		endOfDay := day.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		activeUntil = &endOfDay
	}

	var n models.Notification
	if id > 0 {
		if err := h.db.First(&n, id).Error; err != nil {
			SetFlashError(w, "Notification not found")
			http.Redirect(w, r, "/admin/notifications", http.StatusSeeOther)
			return
		}
	} else {
		n.SentAt = time.Now()
	}
	n.Title = title
	n.Message = message
	n.Type = kind
	n.RouteID = routeID
	n.ActiveUntil = activeUntil

	var err error
	if id > 0 {
		err = h.db.Save(&n).Error
	} else {
		err = h.db.Create(&n).Error
	}
	if err != nil {
		SetFlashError(w, "Failed to save notification")
	} else {
		SetFlashSuccess(w, "Notification saved")
	}
	http.Redirect(w, r, "/admin/notifications", http.StatusSeeOther)
}

// Delete removes an alert outright.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		http.Redirect(w, r, "/admin/notifications", http.StatusSeeOther)
		return
	}
	if err := h.db.Delete(&models.Notification{}, id).Error; err != nil {
		SetFlashError(w, "Failed to delete notification")
	} else {
		SetFlashSuccess(w, "Notification deleted")
	}
	http.Redirect(w, r, "/admin/notifications", http.StatusSeeOther)
}
