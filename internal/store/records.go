package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/thivian17/lecturelink/internal/domain"
)

func prepareLecture(l domain.Lecture, now time.Time) domain.Lecture {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = domain.LectureProcessing
	}
	l.CreatedAt = now
	l.UpdatedAt = now
	return l
}

// mergeSummary carries the id and creation time of an existing record
// into its replacement.
func mergeSummary(existing *domain.SummaryRecord, next domain.SummaryRecord, now time.Time) domain.SummaryRecord {
	if existing != nil {
		next.ID = existing.ID
		next.CreatedAt = existing.CreatedAt
	}
	if next.ID == "" {
		next.ID = uuid.NewString()
	}
	if next.CreatedAt.IsZero() {
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	return next
}
