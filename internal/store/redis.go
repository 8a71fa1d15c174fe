package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/thivian17/lecturelink/internal/domain"
)

// Keys: lecture:<id> => JSON(Lecture), summary:<lectureId> => JSON(SummaryRecord).
// Sorted set for listing: lectures (score: createdAt unix micros).
const lecturesIndexKey = "lectures"

type redisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

// NewRedisClient constructs a go-redis client with conservative timeouts.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func lectureKey(id string) string        { return fmt.Sprintf("lecture:%s", id) }
func summaryKey(lectureID string) string { return fmt.Sprintf("summary:%s", lectureID) }

func (r *redisStore) CurrentUser(ctx context.Context) (*domain.User, error) {
	return currentUser(ctx)
}

func (r *redisStore) CreateLecture(ctx context.Context, lecture domain.Lecture) (domain.Lecture, error) {
	lecture = prepareLecture(lecture, time.Now().UTC())

	b, err := json.Marshal(lecture)
	if err != nil {
		return domain.Lecture{}, fmt.Errorf("encode lecture: %w", err)
	}

	created, err := r.client.SetNX(ctx, lectureKey(lecture.ID), b, 0).Result()
	if err != nil {
		return domain.Lecture{}, fmt.Errorf("create lecture: %w", err)
	}
	if !created {
		return domain.Lecture{}, fmt.Errorf("lecture %s: %w", lecture.ID, ErrAlreadyExists)
	}

	score := float64(lecture.CreatedAt.UnixMicro())
	if err := r.client.ZAdd(ctx, lecturesIndexKey, redis.Z{Score: score, Member: lecture.ID}).Err(); err != nil {
		return domain.Lecture{}, fmt.Errorf("index lecture: %w", err)
	}
	return lecture, nil
}

func (r *redisStore) GetLecture(ctx context.Context, id string) (domain.Lecture, error) {
	val, err := r.client.Get(ctx, lectureKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Lecture{}, fmt.Errorf("lecture %s: %w", id, ErrNotFound)
		}
		return domain.Lecture{}, fmt.Errorf("get lecture: %w", err)
	}

	var l domain.Lecture
	if err := json.Unmarshal(val, &l); err != nil {
		return domain.Lecture{}, fmt.Errorf("decode lecture %s: %w", id, err)
	}
	return l, nil
}

// UpdateLecture applies the update under WATCH so concurrent writers to the
// same lecture cannot interleave.
func (r *redisStore) UpdateLecture(ctx context.Context, id string, update domain.LectureUpdate) error {
	key := lectureKey(id)

	txf := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return fmt.Errorf("lecture %s: %w", id, ErrNotFound)
			}
			return err
		}

		var l domain.Lecture
		if err := json.Unmarshal(val, &l); err != nil {
			return fmt.Errorf("decode lecture %s: %w", id, err)
		}
		update.Apply(&l, time.Now().UTC())

		b, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("encode lecture: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < 3; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("update lecture: %w", err)
		}
		return nil
	}
	return fmt.Errorf("update lecture %s: too much contention", id)
}

func (r *redisStore) ListLectures(ctx context.Context, filter ListFilter) ([]domain.Lecture, error) {
	ids, err := r.client.ZRevRange(ctx, lecturesIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}

	lectures := make([]domain.Lecture, 0, len(ids))
	for _, id := range ids {
		l, err := r.GetLecture(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		if filter.match(l) {
			lectures = append(lectures, l)
		}
	}
	return lectures, nil
}

func (r *redisStore) UpsertSummary(ctx context.Context, summary domain.SummaryRecord) (domain.SummaryRecord, error) {
	if summary.LectureID == "" {
		return domain.SummaryRecord{}, errors.New("summary lecture id is required")
	}

	var existing *domain.SummaryRecord
	prev, err := r.GetSummaryByLecture(ctx, summary.LectureID)
	switch {
	case err == nil:
		existing = &prev
	case !errors.Is(err, ErrNotFound):
		return domain.SummaryRecord{}, err
	}

	summary = mergeSummary(existing, summary, time.Now().UTC())
	b, err := json.Marshal(summary)
	if err != nil {
		return domain.SummaryRecord{}, fmt.Errorf("encode summary: %w", err)
	}
	if err := r.client.Set(ctx, summaryKey(summary.LectureID), b, 0).Err(); err != nil {
		return domain.SummaryRecord{}, fmt.Errorf("upsert summary: %w", err)
	}
	return summary, nil
}

func (r *redisStore) GetSummaryByLecture(ctx context.Context, lectureID string) (domain.SummaryRecord, error) {
	val, err := r.client.Get(ctx, summaryKey(lectureID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.SummaryRecord{}, fmt.Errorf("summary for lecture %s: %w", lectureID, ErrNotFound)
		}
		return domain.SummaryRecord{}, fmt.Errorf("get summary: %w", err)
	}

	var s domain.SummaryRecord
	if err := json.Unmarshal(val, &s); err != nil {
		return domain.SummaryRecord{}, fmt.Errorf("decode summary: %w", err)
	}
	return s, nil
}

func (r *redisStore) Close() error {
	return r.client.Close()
}
