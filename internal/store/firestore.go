package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/thivian17/lecturelink/internal/domain"
)

const (
	lecturesCollection  = "lectures"
	summariesCollection = "summaries"
)

// firestoreStore keeps lectures and summaries in two collections. A summary
// document's id is its lecture id.
type firestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore connects to Firestore in projectID. The emulator is used
// when FIRESTORE_EMULATOR_HOST is set.
func NewFirestoreStore(ctx context.Context, projectID string) (Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &firestoreStore{client: client}, nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (f *firestoreStore) CurrentUser(ctx context.Context) (*domain.User, error) {
	return currentUser(ctx)
}

func (f *firestoreStore) CreateLecture(ctx context.Context, lecture domain.Lecture) (domain.Lecture, error) {
	lecture = prepareLecture(lecture, time.Now().UTC())

	_, err := f.client.Collection(lecturesCollection).Doc(lecture.ID).Create(ctx, lecture)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return domain.Lecture{}, fmt.Errorf("lecture %s: %w", lecture.ID, ErrAlreadyExists)
		}
		return domain.Lecture{}, fmt.Errorf("create lecture: %w", err)
	}
	return lecture, nil
}

func (f *firestoreStore) GetLecture(ctx context.Context, id string) (domain.Lecture, error) {
	snap, err := f.client.Collection(lecturesCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return domain.Lecture{}, fmt.Errorf("lecture %s: %w", id, ErrNotFound)
		}
		return domain.Lecture{}, fmt.Errorf("get lecture: %w", err)
	}

	var l domain.Lecture
	if err := snap.DataTo(&l); err != nil {
		return domain.Lecture{}, fmt.Errorf("decode lecture %s: %w", id, err)
	}
	return l, nil
}

func (f *firestoreStore) UpdateLecture(ctx context.Context, id string, update domain.LectureUpdate) error {
	fields := update.Fields()
	updates := make([]firestore.Update, 0, len(fields)+1)
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	updates = append(updates, firestore.Update{Path: "updated_at", Value: time.Now().UTC()})

	if _, err := f.client.Collection(lecturesCollection).Doc(id).Update(ctx, updates); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("lecture %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("update lecture: %w", err)
	}
	return nil
}

func (f *firestoreStore) ListLectures(ctx context.Context, filter ListFilter) ([]domain.Lecture, error) {
	query := f.client.Collection(lecturesCollection).Query
	if filter.UserID != "" {
		query = query.Where("user_id", "==", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	if !filter.CreatedBefore.IsZero() {
		query = query.Where("created_at", "<", filter.CreatedBefore)
	}
	query = query.OrderBy("created_at", firestore.Desc)

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}

	lectures := make([]domain.Lecture, 0, len(snaps))
	for _, snap := range snaps {
		var l domain.Lecture
		if err := snap.DataTo(&l); err != nil {
			return nil, fmt.Errorf("decode lecture %s: %w", snap.Ref.ID, err)
		}
		lectures = append(lectures, l)
	}
	return lectures, nil
}

func (f *firestoreStore) UpsertSummary(ctx context.Context, summary domain.SummaryRecord) (domain.SummaryRecord, error) {
	if summary.LectureID == "" {
		return domain.SummaryRecord{}, errors.New("summary lecture id is required")
	}

	ref := f.client.Collection(summariesCollection).Doc(summary.LectureID)
	var stored domain.SummaryRecord

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var existing *domain.SummaryRecord
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			var prev domain.SummaryRecord
			if err := snap.DataTo(&prev); err != nil {
				return fmt.Errorf("decode summary: %w", err)
			}
			existing = &prev
		case !isNotFound(err):
			return err
		}

		stored = mergeSummary(existing, summary, time.Now().UTC())
		return tx.Set(ref, stored)
	})
	if err != nil {
		return domain.SummaryRecord{}, fmt.Errorf("upsert summary: %w", err)
	}
	return stored, nil
}

func (f *firestoreStore) GetSummaryByLecture(ctx context.Context, lectureID string) (domain.SummaryRecord, error) {
	snap, err := f.client.Collection(summariesCollection).Doc(lectureID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return domain.SummaryRecord{}, fmt.Errorf("summary for lecture %s: %w", lectureID, ErrNotFound)
		}
		return domain.SummaryRecord{}, fmt.Errorf("get summary: %w", err)
	}

	var s domain.SummaryRecord
	if err := snap.DataTo(&s); err != nil {
		return domain.SummaryRecord{}, fmt.Errorf("decode summary: %w", err)
	}
	return s, nil
}

func (f *firestoreStore) Close() error {
	return f.client.Close()
}
