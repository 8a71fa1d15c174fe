package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/thivian17/lecturelink/internal/domain"
	"github.com/thivian17/lecturelink/internal/logger"
	"github.com/thivian17/lecturelink/internal/processing"
	"github.com/thivian17/lecturelink/internal/store"
	"github.com/thivian17/lecturelink/internal/upload"
)

// callLog records the order in which collaborators were called.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) count(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		if c == name {
			n++
		}
	}
	return n
}

type fakeProcessing struct {
	log *callLog

	mu         sync.Mutex
	submitted  []processing.JobRequest
	summaryReq []string
	statusN    int

	submitErr  error
	statusFn   func(n int) (processing.JobStatus, error)
	result     processing.JobResult
	resultErr  error
	summary    domain.Summary
	summaryErr error
	deleteErr  error
}

func newFakeProcessing(log *callLog) *fakeProcessing {
	return &fakeProcessing{
		log: log,
		statusFn: func(int) (processing.JobStatus, error) {
			return processing.JobStatus{JobID: "job-1", Status: processing.StatusProcessing}, nil
		},
	}
}

func (f *fakeProcessing) SubmitJob(ctx context.Context, req processing.JobRequest) (processing.JobHandle, error) {
	f.log.add("SubmitJob")
	f.mu.Lock()
	f.submitted = append(f.submitted, req)
	f.mu.Unlock()
	if f.submitErr != nil {
		return processing.JobHandle{}, f.submitErr
	}
	return processing.JobHandle{JobID: "job-1", Status: processing.StatusPending}, nil
}

func (f *fakeProcessing) GetStatus(ctx context.Context, jobID string) (processing.JobStatus, error) {
	f.log.add("GetStatus")
	f.mu.Lock()
	f.statusN++
	n := f.statusN
	fn := f.statusFn
	f.mu.Unlock()
	return fn(n)
}

func (f *fakeProcessing) GetResult(ctx context.Context, jobID string) (processing.JobResult, error) {
	f.log.add("GetResult")
	return f.result, f.resultErr
}

func (f *fakeProcessing) GenerateSummary(ctx context.Context, documentText, title string) (domain.Summary, error) {
	f.log.add("GenerateSummary")
	f.mu.Lock()
	f.summaryReq = append(f.summaryReq, documentText, title)
	f.mu.Unlock()
	return f.summary, f.summaryErr
}

func (f *fakeProcessing) DeleteJob(ctx context.Context, jobID string) error {
	f.log.add("DeleteJob")
	return f.deleteErr
}

func (f *fakeProcessing) statusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusN
}

type fakeStore struct {
	log *callLog

	mu        sync.Mutex
	lectures  map[string]domain.Lecture
	summaries map[string]domain.SummaryRecord
	updates   []domain.LectureUpdate

	noUser    bool
	onCreate  func()
	createErr error
	updateErr error
	upsertErr error
}

func newFakeStore(log *callLog) *fakeStore {
	return &fakeStore{
		log:       log,
		lectures:  map[string]domain.Lecture{},
		summaries: map[string]domain.SummaryRecord{},
	}
}

func (s *fakeStore) CurrentUser(ctx context.Context) (*domain.User, error) {
	s.log.add("CurrentUser")
	if s.noUser {
		return nil, nil
	}
	return &domain.User{ID: "user-1"}, nil
}

func (s *fakeStore) CreateLecture(ctx context.Context, l domain.Lecture) (domain.Lecture, error) {
	s.log.add("CreateLecture")
	if s.createErr != nil {
		return domain.Lecture{}, s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now()
	s.lectures[l.ID] = l
	if s.onCreate != nil {
		s.onCreate()
	}
	return l, nil
}

func (s *fakeStore) GetLecture(ctx context.Context, id string) (domain.Lecture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lectures[id]
	if !ok {
		return domain.Lecture{}, store.ErrNotFound
	}
	return l, nil
}

func (s *fakeStore) UpdateLecture(ctx context.Context, id string, u domain.LectureUpdate) error {
	s.log.add("UpdateLecture")
	if s.updateErr != nil {
		return s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lectures[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Apply(&l, time.Now())
	s.lectures[id] = l
	s.updates = append(s.updates, u)
	return nil
}

func (s *fakeStore) ListLectures(ctx context.Context, filter store.ListFilter) ([]domain.Lecture, error) {
	return nil, nil
}

func (s *fakeStore) UpsertSummary(ctx context.Context, rec domain.SummaryRecord) (domain.SummaryRecord, error) {
	s.log.add("UpsertSummary")
	if s.upsertErr != nil {
		return domain.SummaryRecord{}, s.upsertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[rec.LectureID] = rec
	return rec, nil
}

func (s *fakeStore) GetSummaryByLecture(ctx context.Context, lectureID string) (domain.SummaryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.summaries[lectureID]
	if !ok {
		return domain.SummaryRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) lecture(t *testing.T, id string) domain.Lecture {
	t.Helper()
	l, err := s.GetLecture(context.Background(), id)
	if err != nil {
		t.Fatalf("lecture %s: %v", id, err)
	}
	return l
}

type manualTicker struct {
	ch chan time.Time
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time, 16)}
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               {}

func (m *manualTicker) tick() {
	select {
	case m.ch <- time.Now():
	default:
	}
}

type fakeNavigator struct {
	mu    sync.Mutex
	calls []string
}

func (n *fakeNavigator) Navigate(lectureID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, lectureID)
}

func (n *fakeNavigator) navigated() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

type harness struct {
	log    *callLog
	proc   *fakeProcessing
	store  *fakeStore
	nav    *fakeNavigator
	ticker *manualTicker
	orch   *implOrchestrator

	mu     sync.Mutex
	stages []Stage
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := &callLog{}
	h := &harness{
		log:    log,
		proc:   newFakeProcessing(log),
		store:  newFakeStore(log),
		nav:    &fakeNavigator{},
		ticker: newManualTicker(),
	}
	h.orch = newOrchestrator(Deps{
		Processing: h.proc,
		Store:      h.store,
		Navigator:  h.nav,
		Logger:     logger.New("error", "text"),
	}, Options{
		PollInterval:  time.Hour,
		RedirectDelay: time.Millisecond,
		OnChange:      h.record,
	})
	h.orch.newTicker = func(time.Duration) ticker { return h.ticker }
	t.Cleanup(h.orch.Close)
	return h
}

func (h *harness) record(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.stages); n == 0 || h.stages[n-1] != s.Stage {
		h.stages = append(h.stages, s.Stage)
	}
}

func (h *harness) seenStages() []Stage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Stage(nil), h.stages...)
}

func (h *harness) wait(t *testing.T) (Snapshot, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := h.orch.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() timed out in stage %s", snap.Stage)
	}
	return snap, err
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

const mb = 1024 * 1024

// writeMedia creates a file with the given header, sparsely extended to size.
func writeMedia(t *testing.T, name string, head []byte, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, head, 0644); err != nil {
		t.Fatal(err)
	}
	if size > int64(len(head)) {
		if err := os.Truncate(path, size); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func selection(t *testing.T, audioPath, slidesPath string) upload.Selection {
	t.Helper()
	sel, err := upload.NewSelection(audioPath, slidesPath)
	if err != nil {
		t.Fatalf("NewSelection() error = %v", err)
	}
	return sel
}

func mp3Selection(t *testing.T) upload.Selection {
	return selection(t, writeMedia(t, "lecture.mp3", []byte("ID3\x04"), 10*mb), "")
}

func completedStatus(int) (processing.JobStatus, error) {
	return processing.JobStatus{JobID: "job-1", Status: processing.StatusCompleted, Progress: 100}, nil
}
