package api

import (
	"context"

	"github.com/rpupo63/portfolio-site-backend/auth"
)

type keyType string

const identityKey keyType = "identity"

// ctxWithIdentity adds the authenticated admin to the context
func ctxWithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// ctxGetIdentity retrieves the authenticated admin from the context
func ctxGetIdentity(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}
