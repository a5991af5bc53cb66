package api

import (
	"context"

	"github.com/shelter-training/maps-trainer/internal/auth"
)

type contextKey string

const identityContextKey contextKey = "identity"

// IdentityFromContext extracts the authenticated identity from context
func IdentityFromContext(ctx context.Context) *auth.Identity {
	id, ok := ctx.Value(identityContextKey).(*auth.Identity)
	if !ok {
		return nil
	}
	return id
}

// ContextWithIdentity adds an identity to context
func ContextWithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}
