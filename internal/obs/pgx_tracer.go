package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ctxSpanKey struct{}

// PGXTracer implements pgx.QueryTracer to create spans for database interactions.
// Spans are named after the sqlc query when the statement carries a
// "-- name:" header.
type PGXTracer struct{}

// TraceQueryStart starts a span for the SQL statement.
func (PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	name, body := splitQueryName(data.SQL)
	spanName := "pgx.query"
	if name != "" {
		spanName = "pgx." + name
	}
	ctx, span := otel.Tracer("db.pgx").Start(ctx, spanName)
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.statement", truncateSQL(body)),
	)
	if fields := strings.Fields(body); len(fields) > 0 {
		span.SetAttributes(attribute.String("db.operation", strings.ToUpper(fields[0])))
	}
	return context.WithValue(ctx, ctxSpanKey{}, span)
}

// TraceQueryEnd ends the span and records any error.
func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	if span, ok := ctx.Value(ctxSpanKey{}).(trace.Span); ok {
		if data.Err != nil {
			span.RecordError(data.Err)
		}
		span.End()
	}
}

// splitQueryName strips a leading "-- name: X :kind" line.
func splitQueryName(sql string) (string, string) {
	trimmed := strings.TrimSpace(sql)
	if !strings.HasPrefix(trimmed, "-- name:") {
		return "", trimmed
	}
	header, rest, _ := strings.Cut(trimmed, "\n")
	fields := strings.Fields(strings.TrimPrefix(header, "-- name:"))
	if len(fields) == 0 {
		return "", strings.TrimSpace(rest)
	}
	return fields[0], strings.TrimSpace(rest)
}

func truncateSQL(sql string) string {
	trimmed := strings.TrimSpace(sql)
	if len(trimmed) > 300 {
		return trimmed[:300] + "..."
	}
	return trimmed
}
