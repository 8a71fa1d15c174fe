package reconcile

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thivian17/lecturelink/internal/domain"
	"github.com/thivian17/lecturelink/internal/store"
)

const orphanMessage = "Processing was interrupted before the job finished."

// DefaultOrphanAge is the age past which a processing lecture is treated as
// orphaned. Lectures only record their job id when processing ends, so a
// slow job and an abandoned one look alike; this must exceed the longest
// expected job.
const DefaultOrphanAge = 24 * time.Hour

func (r *implReconciler) ListOrphans(ctx context.Context, userID string, olderThan time.Duration) ([]domain.Lecture, error) {
	if olderThan <= 0 {
		olderThan = DefaultOrphanAge
	}
	lectures, err := r.store.ListLectures(ctx, store.ListFilter{
		UserID:        userID,
		Status:        domain.LectureProcessing,
		CreatedBefore: r.now().Add(-olderThan),
	})
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	return lectures, nil
}

func (r *implReconciler) MarkFailed(ctx context.Context, lectures []domain.Lecture) (int, error) {
	var marked atomic.Int64

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.concurrency)

	for _, lecture := range lectures {
		eg.Go(func() error {
			ok, err := r.markOne(gctx, lecture.ID)
			if err != nil {
				return fmt.Errorf("lecture %s: %w", lecture.ID, err)
			}
			if ok {
				marked.Add(1)
			}
			return nil
		})
	}

	err := eg.Wait()
	return int(marked.Load()), err
}

// markOne re-reads the lecture so a record that reached a terminal status
// in the meantime is left alone.
func (r *implReconciler) markOne(ctx context.Context, id string) (bool, error) {
	current, err := r.store.GetLecture(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get lecture: %w", err)
	}
	if current.Status != domain.LectureProcessing {
		r.logger.Debug(ctx, "Lecture %s is already %s, skipping", id, current.Status)
		return false, nil
	}

	err = r.store.UpdateLecture(ctx, id, domain.LectureUpdate{
		Status: domain.Ptr(domain.LectureFailed),
		Error:  domain.Ptr(orphanMessage),
	})
	if err != nil {
		return false, fmt.Errorf("update lecture: %w", err)
	}

	r.logger.Info(ctx, "Marked orphan lecture %s (%q) as failed", id, current.Title)
	return true, nil
}
