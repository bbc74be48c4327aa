// Package shop scopes requests to the storefront whose discounts and tax
// zones apply.
package shop

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const shopContextKey contextKey = "shop.id"

// With stores the shop identifier inside the context.
func With(ctx context.Context, id uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, shopContextKey, id)
}

// From extracts the shop identifier from the context if available.
func From(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	id, ok := ctx.Value(shopContextKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
