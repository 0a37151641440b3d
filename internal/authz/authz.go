// Package authz carries the capability token passed into every lifecycle
// operation. Handlers construct an Actor once per request; the engine
// consults the policy functions here instead of re-checking credentials.
package authz

import (
	"context"
	"errors"

	"github.com/courtbook/courtbook/internal/domain"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Actor identifies the pre-authorized caller of an operation.
type Actor struct {
	ID   int64
	Role string
}

type actorContextKey struct{}

func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext retrieves the Actor stored in ctx. The second return is
// false if ctx is nil or carries no actor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

// IsOperator reports whether the actor holds the vendor or admin role.
func IsOperator(actor Actor) bool {
	return actor.Role == domain.RoleVendor || actor.Role == domain.RoleAdmin
}

// IsAdmin reports whether the actor holds the admin role.
func IsAdmin(actor Actor) bool {
	return actor.Role == domain.RoleAdmin
}

// CanManageBooking is the single ownership policy consulted by every booking
// lifecycle operation: the owning user may manage their booking, and
// operators may manage any booking.
func CanManageBooking(actor Actor, ownerID int64) bool {
	return actor.ID == ownerID || IsOperator(actor)
}

// RequireOperator returns ErrForbidden unless the actor is vendor or admin.
func RequireOperator(actor Actor) error {
	if !IsOperator(actor) {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin returns ErrForbidden unless the actor is admin.
func RequireAdmin(actor Actor) error {
	if !IsAdmin(actor) {
		return ErrForbidden
	}
	return nil
}
