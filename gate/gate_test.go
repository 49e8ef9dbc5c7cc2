package gate

import (
	"context"
	"errors"
	"testing"
)

// ownedResource is a test resource with an owner id.
type ownedResource struct {
	owner uint
}

// ownerPolicy allows only the owning user.
type ownerPolicy struct{}

func (ownerPolicy) Can(_ context.Context, user uint, _ Action, resource any) bool {
	res, ok := resource.(*ownedResource)
	if !ok {
		return false
	}
	return res.owner == user
}

func newTestGate() (*Gate[uint], *StaticResolver[uint]) {
	resolver := NewStaticResolver[uint]()
	g := NewGate[uint](resolver)
	g.Register("comment", ownerPolicy{})
	return g, resolver
}

func TestGateZeroUserDenied(t *testing.T) {
	g, _ := newTestGate()
	if err := g.Authorize(context.Background(), 0, ActionView, "comment", nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for zero user, got %v", err)
	}
}

func TestGateUnknownUserDenied(t *testing.T) {
	g, _ := newTestGate()
	if g.Can(context.Background(), 7, ActionList, "comment", nil) {
		t.Fatal("expected unknown user to be denied")
	}
}

func TestGateOwnerAllowedNonOwnerDenied(t *testing.T) {
	g, resolver := newTestGate()
	resolver.Set(42, RoleUser)
	resolver.Set(99, RoleUser)
	res := &ownedResource{owner: 42}

	if !g.Can(context.Background(), 42, ActionUpdate, "comment", res) {
		t.Error("expected owner to be allowed")
	}
	if g.Can(context.Background(), 99, ActionUpdate, "comment", res) {
		t.Error("expected non-owner to be denied")
	}
}

func TestGateAdminOverride(t *testing.T) {
	g, resolver := newTestGate()
	resolver.Set(1, RoleAdmin)
	res := &ownedResource{owner: 42}

	if !g.Can(context.Background(), 1, ActionDelete, "comment", res) {
		t.Error("expected admin to bypass ownership")
	}
}

func TestGateNilResourceAllowedForRole(t *testing.T) {
	g, resolver := newTestGate()
	resolver.Set(5, RoleUser)
	// list/create have no specific resource; role suffices
	if !g.Can(context.Background(), 5, ActionCreate, "comment", nil) {
		t.Error("expected create with nil resource to be allowed for user role")
	}
}

func TestRoleOfMapsErrorsToNone(t *testing.T) {
	g := NewGate[uint](failingResolver{})
	if got := g.RoleOf(context.Background(), 3); got != RoleNone {
		t.Fatalf("expected RoleNone on resolver error, got %v", got)
	}
}

type failingResolver struct{}

func (failingResolver) Resolve(context.Context, uint) (Role, error) {
	return RoleAdmin, errors.New("store unavailable")
}

func TestRoleString(t *testing.T) {
	cases := map[Role]string{RoleNone: "none", RoleUser: "user", RoleAdmin: "admin"}
	for role, want := range cases {
		if role.String() != want {
			t.Errorf("Role(%d).String() = %q, want %q", role, role.String(), want)
		}
	}
	if RoleNone.Authenticated() {
		t.Error("RoleNone should not be authenticated")
	}
	if !RoleUser.Authenticated() || !RoleAdmin.Authenticated() {
		t.Error("user and admin roles should be authenticated")
	}
}
