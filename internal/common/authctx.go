package common

import "context"

type ctxKey string

const (
	customerIDKey ctxKey = "auth/customer-id"
	adminKey      ctxKey = "auth/admin"
)

// WithCustomerID stores the authenticated customer identifier on the context.
func WithCustomerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, customerIDKey, id)
}

// CustomerID extracts the authenticated customer identifier from the context if present.
func CustomerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(customerIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// WithAdmin marks the request as carrying a verified admin key.
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey, true)
}

// IsAdmin reports whether WithAdmin was applied.
func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(adminKey).(bool)
	return v
}
