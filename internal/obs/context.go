package obs

import (
	"context"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type routePatternKey struct{}

type fieldsKey struct{}

// WithRoutePattern pins the route label for handlers served outside chi.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext returns the pinned route label, if any.
func RoutePatternFromContext(ctx context.Context) string {
	v, _ := ctx.Value(routePatternKey{}).(string)
	return v
}

// requestFields collects values that inner middleware learns about a request
// (shop, customer) so outer middleware can log them after the handler returns.
type requestFields struct {
	mu     sync.Mutex
	values map[string]string
}

func withRequestFields(ctx context.Context) (context.Context, *requestFields) {
	if f, ok := ctx.Value(fieldsKey{}).(*requestFields); ok {
		return ctx, f
	}
	f := &requestFields{values: map[string]string{}}
	return context.WithValue(ctx, fieldsKey{}, f), f
}

func (f *requestFields) each(fn func(key, value string)) {
	f.mu.Lock()
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = f.values[k]
	}
	f.mu.Unlock()
	for i, k := range keys {
		fn(k, values[i])
	}
}

// Annotate attaches key=value to the request log line and the active span.
// Empty values are ignored.
func Annotate(ctx context.Context, key, value string) {
	if value == "" {
		return
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("pricing."+key, value))
	f, ok := ctx.Value(fieldsKey{}).(*requestFields)
	if !ok {
		return
	}
	f.mu.Lock()
	f.values[key] = value
	f.mu.Unlock()
}
