package service

import "context"

// DefaultActorName labels mutations whose context carries no actor.
// Deployments name their own placeholder with WithActor at the edge.
const DefaultActorName = "Administrator"

// Actor identifies who performed a mutation.
type Actor struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Label is the value written into ledger and audit columns.
func (a Actor) Label() string {
	switch {
	case a.Name != "":
		return a.Name
	case a.Email != "":
		return a.Email
	}
	return DefaultActorName
}

type actorKey struct{}

// WithActor returns a context carrying the acting operator.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the operator in ctx, or the placeholder actor.
func ActorFrom(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		return a
	}
	return Actor{Name: DefaultActorName}
}
