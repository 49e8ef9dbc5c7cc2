package models

import "time"

// Comment is a rider's rating and remark on a route.
// Owned by the authoring user; mutable by that user or the administrator.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	RouteID     uint      `gorm:"index;not null" json:"route_id"`
	CommentText string    `gorm:"size:2000;not null" json:"comment_text"`
	Rating      int       `gorm:"not null" json:"rating"` // 1..5
	CreatedAt   time.Time `json:"created_at"`
}

// GetUserID implements policy.Ownable.
func (c *Comment) GetUserID() uint { return c.UserID }

// CommentWithDetails is the read model for comment lists: a comment joined
// with its author's username and the route name.
type CommentWithDetails struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	RouteID     uint      `json:"route_id"`
	CommentText string    `json:"comment_text"`
	Rating      int       `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	Username    string    `json:"username"`
	RouteName   string    `json:"route_name"`
}
