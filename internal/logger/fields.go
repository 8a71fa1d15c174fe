package logger

import (
	"context"
	"log/slog"
)

type fieldsKey struct{}

// WithField returns a context whose log lines carry key=value.
func WithField(ctx context.Context, key, value string) context.Context {
	prev := fieldsFrom(ctx)
	next := make([]slog.Attr, 0, len(prev)+1)
	next = append(next, prev...)
	next = append(next, slog.String(key, value))
	return context.WithValue(ctx, fieldsKey{}, next)
}

func fieldsFrom(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(fieldsKey{}).([]slog.Attr)
	return attrs
}
