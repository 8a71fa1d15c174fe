package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/thivian17/lecturelink/internal/domain"
)

// runStoreSuite exercises the behavior every backend must share.
func runStoreSuite(t *testing.T, s Store) {
	ctx := WithUser(context.Background(), "user-1")

	t.Run("current user", func(t *testing.T) {
		u, err := s.CurrentUser(ctx)
		if err != nil || u == nil || u.ID != "user-1" {
			t.Fatalf("CurrentUser() = %v, %v", u, err)
		}
		u, err = s.CurrentUser(context.Background())
		if err != nil || u != nil {
			t.Errorf("CurrentUser(anonymous) = %v, %v, want nil", u, err)
		}
	})

	t.Run("create get update", func(t *testing.T) {
		created, err := s.CreateLecture(ctx, domain.Lecture{UserID: "user-1", Title: "Intro to ML"})
		if err != nil {
			t.Fatalf("CreateLecture() error = %v", err)
		}
		if created.ID == "" || created.Status != domain.LectureProcessing || created.CreatedAt.IsZero() {
			t.Fatalf("created = %+v", created)
		}

		err = s.UpdateLecture(ctx, created.ID, domain.LectureUpdate{
			Status:       domain.Ptr(domain.LectureCompleted),
			HasSlides:    domain.Ptr(true),
			HasAlignment: domain.Ptr(true),
		})
		if err != nil {
			t.Fatalf("UpdateLecture() error = %v", err)
		}

		got, err := s.GetLecture(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetLecture() error = %v", err)
		}
		if got.Status != domain.LectureCompleted || !got.HasSlides || !got.HasAlignment {
			t.Errorf("GetLecture() = %+v", got)
		}
		if got.Title != "Intro to ML" {
			t.Errorf("Title = %q, want unchanged", got.Title)
		}
	})

	t.Run("missing records", func(t *testing.T) {
		if _, err := s.GetLecture(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetLecture(missing) error = %v, want ErrNotFound", err)
		}
		if err := s.UpdateLecture(ctx, "nope", domain.LectureUpdate{Status: domain.Ptr(domain.LectureFailed)}); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateLecture(missing) error = %v, want ErrNotFound", err)
		}
		if _, err := s.GetSummaryByLecture(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetSummaryByLecture(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("summary upsert keeps one record", func(t *testing.T) {
		lecture, err := s.CreateLecture(ctx, domain.Lecture{UserID: "user-1", Title: "Thermo"})
		if err != nil {
			t.Fatal(err)
		}

		first, err := s.UpsertSummary(ctx, domain.SummaryRecord{LectureID: lecture.ID, Title: "v1"})
		if err != nil {
			t.Fatalf("UpsertSummary() error = %v", err)
		}
		second, err := s.UpsertSummary(ctx, domain.SummaryRecord{
			LectureID:       lecture.ID,
			Title:           "v2",
			ImportantPoints: []string{"entropy"},
		})
		if err != nil {
			t.Fatalf("UpsertSummary() error = %v", err)
		}
		if first.ID == "" || second.ID != first.ID {
			t.Errorf("summary ids = %q then %q, want stable id", first.ID, second.ID)
		}

		got, err := s.GetSummaryByLecture(ctx, lecture.ID)
		if err != nil {
			t.Fatalf("GetSummaryByLecture() error = %v", err)
		}
		if got.Title != "v2" || len(got.ImportantPoints) != 1 {
			t.Errorf("summary = %+v", got)
		}
	})

	t.Run("list filters", func(t *testing.T) {
		other, err := s.CreateLecture(ctx, domain.Lecture{UserID: "user-2", Title: "Other"})
		if err != nil {
			t.Fatal(err)
		}

		mine, err := s.ListLectures(ctx, ListFilter{UserID: "user-1"})
		if err != nil {
			t.Fatalf("ListLectures() error = %v", err)
		}
		for _, l := range mine {
			if l.UserID != "user-1" {
				t.Errorf("ListLectures(user-1) returned %+v", l)
			}
		}
		if len(mine) < 2 {
			t.Errorf("ListLectures(user-1) = %d lectures, want at least 2", len(mine))
		}
		for i := 1; i < len(mine); i++ {
			if mine[i].CreatedAt.After(mine[i-1].CreatedAt) {
				t.Errorf("ListLectures() not newest first")
			}
		}

		processing, err := s.ListLectures(ctx, ListFilter{Status: domain.LectureProcessing})
		if err != nil {
			t.Fatal(err)
		}
		found := false
		for _, l := range processing {
			if l.Status != domain.LectureProcessing {
				t.Errorf("status filter returned %+v", l)
			}
			if l.ID == other.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("status filter missed %s", other.ID)
		}

		old, err := s.ListLectures(ctx, ListFilter{CreatedBefore: time.Now().Add(-time.Hour)})
		if err != nil {
			t.Fatal(err)
		}
		if len(old) != 0 {
			t.Errorf("CreatedBefore filter returned %d lectures, want 0", len(old))
		}
	})
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data", "store.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	runStoreSuite(t, s)
}

func TestFileStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	created, err := s.CreateLecture(ctx, domain.Lecture{UserID: "u", Title: "Persisted"})
	if err != nil {
		t.Fatal(err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	got, err := reopened.GetLecture(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetLecture() after reopen error = %v", err)
	}
	if got.Title != "Persisted" {
		t.Errorf("Title = %q", got.Title)
	}
}

func TestFileStoreEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore(empty) error = %v", err)
	}
	if _, err := s.CreateLecture(context.Background(), domain.Lecture{Title: "x"}); err != nil {
		t.Errorf("CreateLecture() error = %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(NewRedisClient(mr.Addr(), "", 0))
	defer s.Close()

	runStoreSuite(t, s)

	if !mr.Exists(lecturesIndexKey) {
		t.Errorf("sorted set %q was not created", lecturesIndexKey)
	}
}

func TestFirestoreStore(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx := context.Background()
	s, err := NewFirestoreStore(ctx, "lecturelink-test")
	if err != nil {
		t.Fatalf("NewFirestoreStore() error = %v", err)
	}
	defer s.Close()

	runStoreSuite(t, s)
}

func TestUserFromContext(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Error("UserFromContext(empty) ok = true")
	}
	if _, ok := UserFromContext(WithUser(context.Background(), "")); ok {
		t.Error("UserFromContext(blank) ok = true")
	}
	id, ok := UserFromContext(WithUser(context.Background(), "abc"))
	if !ok || id != "abc" {
		t.Errorf("UserFromContext() = %q, %v", id, ok)
	}
}
