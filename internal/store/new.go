package store

import (
	"context"
	"fmt"

	"github.com/thivian17/lecturelink/internal/config"
)

// New opens the backend selected by cfg.Store.Backend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.Store.Path)
	case config.BackendRedis:
		client := NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedisStore(client), nil
	case config.BackendFirestore:
		return NewFirestoreStore(ctx, cfg.Firestore.ProjectID)
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}
