// Package gate provides a small role/policy authorization layer.
// A Gate resolves a user to a Role and consults per-resource policies for
// ownership decisions. The package has no dependencies on domain models and
// uses generics so any user/subject type works:
//   - Gate[uint] for simple user ID based auth
//   - Gate[string] for email or token based auth
package gate

import "context"

// Gate is the central authorization checkpoint.
// U is the user/subject type (must be comparable for zero-value check).
type Gate[U comparable] struct {
	resolver RoleResolver[U]
	policies map[string]Policy[U]
}

// NewGate creates a gate backed by the given role resolver.
func NewGate[U comparable](resolver RoleResolver[U]) *Gate[U] {
	return &Gate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register adds a resource-specific policy (e.g. ownership) for a resource
// type such as "comment". Overwrites any existing policy for that type.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize checks:
//  1. User is valid (non-zero) and resolves to a role other than RoleNone.
//  2. Admins pass unconditionally (administrator override).
//  3. If a policy is registered for the resource type and a resource is
//     provided, the policy decides; otherwise the role alone suffices.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	role, err := g.resolver.Resolve(ctx, user)
	if err != nil || role == RoleNone {
		return ErrUnauthorized
	}
	if role == RoleAdmin {
		return nil
	}
	if resource != nil {
		if p, ok := g.policies[resourceType]; ok {
			if !p.Can(ctx, user, action, resource) {
				return ErrUnauthorized
			}
		}
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// RoleOf resolves the user's role, mapping resolver failures to RoleNone so
// callers never see a protected role on a transient lookup error.
func (g *Gate[U]) RoleOf(ctx context.Context, user U) Role {
	var zero U
	if user == zero {
		return RoleNone
	}
	role, err := g.resolver.Resolve(ctx, user)
	if err != nil {
		return RoleNone
	}
	return role
}
