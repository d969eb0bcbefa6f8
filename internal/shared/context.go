package shared

import "context"

// Roles recognised by the accounting core. Authentication itself is
// handled by the collaborator layer; the role arrives on the request.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Actor identifies the tenant and user behind a request.
type Actor struct {
	CompanyID int64
	UserID    int64
	Role      string
}

// Privileged reports whether the actor may authorize void requests.
func (a Actor) Privileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
