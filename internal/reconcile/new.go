package reconcile

import (
	"time"

	"github.com/thivian17/lecturelink/internal/logger"
	"github.com/thivian17/lecturelink/internal/store"
)

const defaultConcurrency = 4

type implReconciler struct {
	store       store.Store
	logger      logger.Logger
	concurrency int
	now         func() time.Time
}

// New creates a Reconciler that updates at most concurrency records at once.
func New(st store.Store, log logger.Logger, concurrency int) Reconciler {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &implReconciler{
		store:       st,
		logger:      log,
		concurrency: concurrency,
		now:         time.Now,
	}
}
