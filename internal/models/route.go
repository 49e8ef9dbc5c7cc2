package models

import "time"

// Route is a bus route between two locations.
// Routes are admin-owned; deleting one cascades to its schedules and
// comments at the database level.
type Route struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Description   string    `gorm:"size:1000" json:"description,omitempty"`
	StartLocation string    `gorm:"size:255;not null" json:"start_location"`
	EndLocation   string    `gorm:"size:255;not null" json:"end_location"`

	Schedules []Schedule `gorm:"constraint:OnDelete:CASCADE" json:"schedules,omitempty"`
	Comments  []Comment  `gorm:"constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// Schedule is a recurring service window on a route.
type Schedule struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	RouteID   uint   `gorm:"index;not null" json:"route_id"`
	DayOfWeek string `gorm:"size:20;not null" json:"day_of_week"`
	StartTime string `gorm:"size:10;not null" json:"start_time"` // "07:30"
	EndTime   string `gorm:"size:10;not null" json:"end_time"`
	// FrequencyMinutes is the headway between departures; nil when the
	// window is a single departure.
	FrequencyMinutes *int `json:"frequency_minutes,omitempty"`
}
