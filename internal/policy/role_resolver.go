package policy

import (
	"context"
	"errors"

	"github.com/transitrack/transitrack/gate"
	"github.com/transitrack/transitrack/internal/models"
	"gorm.io/gorm"
)

// RoleForEmail derives the role of a signed-in user from their email.
// The administrator comparison is a case-sensitive exact match against the
// configured identity.
func RoleForEmail(adminEmail, email string) gate.Role {
	if adminEmail != "" && email == adminEmail {
		return gate.RoleAdmin
	}
	return gate.RoleUser
}

// DBRoleResolver resolves a user id to a role by loading the user row.
// It implements gate.RoleResolver for uint user IDs.
type DBRoleResolver struct {
	DB         *gorm.DB
	AdminEmail string
}

// NewDBRoleResolver creates a database-backed role resolver.
func NewDBRoleResolver(db *gorm.DB, adminEmail string) *DBRoleResolver {
	return &DBRoleResolver{DB: db, AdminEmail: adminEmail}
}

// Resolve returns the role for the user. A missing user is RoleNone without
// error; a store failure is returned so callers (and the cache) can decide —
// the route gate maps it to RoleNone, never to a protected role.
func (r *DBRoleResolver) Resolve(ctx context.Context, userID uint) (gate.Role, error) {
	var user models.User
	err := r.DB.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return gate.RoleNone, nil
	}
	if err != nil {
		return gate.RoleNone, err
	}
	return RoleForEmail(r.AdminEmail, user.Email), nil
}
