package stubapi

import (
	"context"

	"github.com/meridianpay/console/internal/shared"
)

type contextKey struct{}

func contextWithIdentity(ctx context.Context, id shared.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func identityFromContext(ctx context.Context) shared.Identity {
	id, _ := ctx.Value(contextKey{}).(shared.Identity)
	return id
}
