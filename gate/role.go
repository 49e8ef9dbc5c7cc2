package gate

import "context"

// Role is the derived authorization level of a subject.
// Exactly one of the three values holds at any time; RoleNone means no
// session or an unresolvable user.
type Role int

const (
	RoleNone Role = iota
	RoleUser
	RoleAdmin
)

// String returns the lowercase name of the role.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return "none"
	}
}

// Authenticated reports whether the role belongs to a signed-in subject.
func (r Role) Authenticated() bool { return r == RoleUser || r == RoleAdmin }

// RoleResolver resolves a user to their role.
// U is the user type (e.g., uint for userID).
type RoleResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Role, error)
}

// StaticResolver is a simple in-memory resolver for testing or static
// configuration.
type StaticResolver[U comparable] struct {
	roles map[U]Role
}

// NewStaticResolver creates a resolver with predefined user-role mappings.
func NewStaticResolver[U comparable]() *StaticResolver[U] {
	return &StaticResolver[U]{roles: make(map[U]Role)}
}

// Set assigns a role to a user.
func (r *StaticResolver[U]) Set(user U, role Role) {
	r.roles[user] = role
}

// Resolve returns the role for the given user, RoleNone if unknown.
func (r *StaticResolver[U]) Resolve(_ context.Context, user U) (Role, error) {
	if role, ok := r.roles[user]; ok {
		return role, nil
	}
	return RoleNone, nil
}
