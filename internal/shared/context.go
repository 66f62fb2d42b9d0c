package shared

import "context"

type actorContextKey struct{}

// Actor identifies the authenticated user attached by the upstream gateway.
type Actor struct {
	ID   int64
	Name string
}

// ContextWithActor stores the request actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the request actor from context.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorContextKey{}).(Actor)
	return actor
}
