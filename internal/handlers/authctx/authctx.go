package authctx

import (
	"context"

	"github.com/cloudlockr/cloudlockr/internal/models"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// Create a new context carrying verified token claims
func New(ctx context.Context, c models.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// Extract the claims from the context
func FromContext(ctx context.Context) (models.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(models.Claims)
	return c, ok
}
