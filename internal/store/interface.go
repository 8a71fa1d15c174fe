package store

import (
	"context"
	"errors"
	"time"

	"github.com/thivian17/lecturelink/internal/domain"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// ListFilter narrows ListLectures. Zero fields match everything.
type ListFilter struct {
	UserID        string
	Status        domain.LectureStatus
	CreatedBefore time.Time
}

func (f ListFilter) match(l domain.Lecture) bool {
	if f.UserID != "" && l.UserID != f.UserID {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if !f.CreatedBefore.IsZero() && !l.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	return true
}

// Store persists lecture and summary records.
type Store interface {
	// CurrentUser returns the caller carried by ctx, or nil when there is none.
	CurrentUser(ctx context.Context) (*domain.User, error)

	// CreateLecture assigns an id and timestamps and stores the lecture.
	CreateLecture(ctx context.Context, lecture domain.Lecture) (domain.Lecture, error)
	GetLecture(ctx context.Context, id string) (domain.Lecture, error)
	UpdateLecture(ctx context.Context, id string, update domain.LectureUpdate) error
	// ListLectures returns matching lectures, newest first.
	ListLectures(ctx context.Context, filter ListFilter) ([]domain.Lecture, error)

	// UpsertSummary stores the summary keyed by its lecture id, replacing
	// any previous one.
	UpsertSummary(ctx context.Context, summary domain.SummaryRecord) (domain.SummaryRecord, error)
	GetSummaryByLecture(ctx context.Context, lectureID string) (domain.SummaryRecord, error)

	Close() error
}
