package models

import "time"

// Notification types.
const (
	NotificationInfo      = "info"
	NotificationDelay     = "delay"
	NotificationDiversion = "diversion"
)

// NotificationTypes lists the allowed values for Notification.Type.
var NotificationTypes = []string{NotificationInfo, NotificationDelay, NotificationDiversion}

// Notification is a service alert published by the administrator.
// A nil RouteID means the alert applies to all routes.
type Notification struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"size:255;not null" json:"title"`
	Message string `gorm:"size:2000;not null" json:"message"`
	Type    string `gorm:"size:20;not null;default:info" json:"type"`
	RouteID *uint  `gorm:"index" json:"route_id,omitempty"`
	// SentAt orders the feed; ActiveUntil nil means no expiry.
	SentAt      time.Time  `gorm:"not null" json:"sent_at"`
	ActiveUntil *time.Time `json:"active_until,omitempty"`
}

// Active reports whether the notification should still be shown to riders at
// the given instant. The boundary is inclusive: ActiveUntil == now is active.
func (n *Notification) Active(now time.Time) bool {
	return n.ActiveUntil == nil || !n.ActiveUntil.Before(now)
}
