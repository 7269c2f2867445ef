package shared

import "context"

type sessionContextKey struct{}
type actorContextKey struct{}
type requestMetaContextKey struct{}

// Actor identifies the authenticated principal for the current request.
// It is resolved once from the session by the identity middleware and passed
// explicitly through context; nothing reads session globals after that.
type Actor struct {
	ID    int64
	Email string
	Name  string
	Role  string
}

// RequestMeta carries client metadata captured at the edge of the request.
type RequestMeta struct {
	IP        string
	UserAgent string
	RequestID string
}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithActor stores the resolved principal identity in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the principal identity. The second return is
// false for unauthenticated requests.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok && actor.ID != 0
}

// ContextWithRequestMeta stores client metadata in context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaContextKey{}, meta)
}

// RequestMetaFromContext extracts client metadata captured by middleware.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaContextKey{}).(RequestMeta)
	return meta
}
