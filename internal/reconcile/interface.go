package reconcile

import (
	"context"
	"time"

	"github.com/thivian17/lecturelink/internal/domain"
)

// Reconciler finds lecture records left in processing with no job tracking
// them, and marks them failed on request.
type Reconciler interface {
	// ListOrphans returns processing lectures created more than olderThan
	// ago, or DefaultOrphanAge when olderThan is not positive. An empty
	// userID matches every user.
	ListOrphans(ctx context.Context, userID string, olderThan time.Duration) ([]domain.Lecture, error)
	// MarkFailed moves each lecture that is still processing to failed and
	// returns how many were updated.
	MarkFailed(ctx context.Context, lectures []domain.Lecture) (int, error)
}
