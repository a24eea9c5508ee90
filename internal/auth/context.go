package auth

import (
	"context"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

type contextKey string

const (
	contextKeyActor   contextKey = "auth.actor_number"
	contextKeyRole    contextKey = "auth.market_role"
	contextKeySubject contextKey = "auth.subject"
)

// WithIdentity stores the authenticated market actor in context.
func WithIdentity(ctx context.Context, actor market.ActorNumber, role market.ActorRole, subject string) context.Context {
	ctx = context.WithValue(ctx, contextKeyActor, actor)
	ctx = context.WithValue(ctx, contextKeyRole, role)
	ctx = context.WithValue(ctx, contextKeySubject, subject)
	return ctx
}

// ActorFromContext extracts the actor number from context.
func ActorFromContext(ctx context.Context) market.ActorNumber {
	if ctx == nil {
		return market.ActorNumber{}
	}
	if actor, ok := ctx.Value(contextKeyActor).(market.ActorNumber); ok {
		return actor
	}
	return market.ActorNumber{}
}

// RoleFromContext extracts the market role from context.
func RoleFromContext(ctx context.Context) market.ActorRole {
	if ctx == nil {
		return ""
	}
	if role, ok := ctx.Value(contextKeyRole).(market.ActorRole); ok {
		return role
	}
	return ""
}

// SubjectFromContext extracts the token subject from context.
func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if subject, ok := ctx.Value(contextKeySubject).(string); ok {
		return subject
	}
	return ""
}
