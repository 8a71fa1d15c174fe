package store

import (
	"context"

	"github.com/thivian17/lecturelink/internal/domain"
)

type userKey struct{}

// WithUser returns a context that identifies userID as the caller.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext returns the caller's id, if any.
func UserFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey{}).(string)
	return id, ok && id != ""
}

func currentUser(ctx context.Context) (*domain.User, error) {
	id, ok := UserFromContext(ctx)
	if !ok {
		return nil, nil
	}
	return &domain.User{ID: id}, nil
}
