package models

import "time"

// Profile holds a user's display data, one-to-one with User.
// The primary key is the owning user's id, so the row is upserted rather
// than created with an autoincrement.
type Profile struct {
	ID        uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username  string    `gorm:"size:100" json:"username"`
	UpdatedAt time.Time `json:"updated_at"`
}
