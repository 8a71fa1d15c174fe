package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/thivian17/lecturelink/internal/domain"
)

type fileData struct {
	Lectures map[string]domain.Lecture `json:"lectures"`
	// Summaries is keyed by lecture id.
	Summaries map[string]domain.SummaryRecord `json:"summaries"`
}

// fileStore keeps every record in one JSON document on disk.
type fileStore struct {
	mu   sync.RWMutex
	path string
	data fileData
}

// NewFileStore opens (or creates) the JSON store at path.
func NewFileStore(path string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &fileStore{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *fileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = fileData{}

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.ensureMaps()
		return s.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("open store file: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&s.data); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode store file: %w", err)
	}

	s.ensureMaps()
	return nil
}

func (s *fileStore) ensureMaps() {
	if s.data.Lectures == nil {
		s.data.Lectures = map[string]domain.Lecture{}
	}
	if s.data.Summaries == nil {
		s.data.Summaries = map[string]domain.SummaryRecord{}
	}
}

func (s *fileStore) CurrentUser(ctx context.Context) (*domain.User, error) {
	return currentUser(ctx)
}

func (s *fileStore) CreateLecture(ctx context.Context, lecture domain.Lecture) (domain.Lecture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lecture = prepareLecture(lecture, time.Now().UTC())
	if _, ok := s.data.Lectures[lecture.ID]; ok {
		return domain.Lecture{}, fmt.Errorf("lecture %s: %w", lecture.ID, ErrAlreadyExists)
	}

	s.data.Lectures[lecture.ID] = lecture
	if err := s.saveLocked(); err != nil {
		delete(s.data.Lectures, lecture.ID)
		return domain.Lecture{}, err
	}
	return lecture, nil
}

func (s *fileStore) GetLecture(ctx context.Context, id string) (domain.Lecture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lecture, ok := s.data.Lectures[id]
	if !ok {
		return domain.Lecture{}, fmt.Errorf("lecture %s: %w", id, ErrNotFound)
	}
	return lecture, nil
}

func (s *fileStore) UpdateLecture(ctx context.Context, id string, update domain.LectureUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lecture, ok := s.data.Lectures[id]
	if !ok {
		return fmt.Errorf("lecture %s: %w", id, ErrNotFound)
	}

	previous := lecture
	update.Apply(&lecture, time.Now().UTC())
	s.data.Lectures[id] = lecture

	if err := s.saveLocked(); err != nil {
		s.data.Lectures[id] = previous
		return err
	}
	return nil
}

func (s *fileStore) ListLectures(ctx context.Context, filter ListFilter) ([]domain.Lecture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lectures := make([]domain.Lecture, 0, len(s.data.Lectures))
	for _, l := range s.data.Lectures {
		if filter.match(l) {
			lectures = append(lectures, l)
		}
	}
	sort.Slice(lectures, func(i, j int) bool {
		return lectures[i].CreatedAt.After(lectures[j].CreatedAt)
	})
	return lectures, nil
}

func (s *fileStore) UpsertSummary(ctx context.Context, summary domain.SummaryRecord) (domain.SummaryRecord, error) {
	if summary.LectureID == "" {
		return domain.SummaryRecord{}, errors.New("summary lecture id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var existing *domain.SummaryRecord
	if prev, ok := s.data.Summaries[summary.LectureID]; ok {
		existing = &prev
	}

	summary = mergeSummary(existing, summary, time.Now().UTC())
	s.data.Summaries[summary.LectureID] = summary

	if err := s.saveLocked(); err != nil {
		if existing != nil {
			s.data.Summaries[summary.LectureID] = *existing
		} else {
			delete(s.data.Summaries, summary.LectureID)
		}
		return domain.SummaryRecord{}, err
	}
	return summary, nil
}

func (s *fileStore) GetSummaryByLecture(ctx context.Context, lectureID string) (domain.SummaryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.data.Summaries[lectureID]
	if !ok {
		return domain.SummaryRecord{}, fmt.Errorf("summary for lecture %s: %w", lectureID, ErrNotFound)
	}
	return summary, nil
}

func (s *fileStore) Close() error {
	return nil
}

// saveLocked writes through a temp file so a crash never leaves a torn
// document behind.
func (s *fileStore) saveLocked() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "store-*.json")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode store: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp store: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace store file: %w", err)
	}

	return nil
}
