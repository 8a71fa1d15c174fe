package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thivian17/lecturelink/internal/config"
	"github.com/thivian17/lecturelink/internal/domain"
	"github.com/thivian17/lecturelink/internal/logger"
	"github.com/thivian17/lecturelink/internal/orchestrator"
	"github.com/thivian17/lecturelink/internal/store"
	"github.com/thivian17/lecturelink/internal/upload"
)

const (
	aliceToken = "alice-token"
	bobToken   = "bob-token"
)

type fakeOrchestrator struct {
	mu        sync.Mutex
	submitErr error
	snap      orchestrator.Snapshot
	name      string
	user      string
	sel       upload.Selection
	closed    bool
	done      chan struct{}
	closeOnce sync.Once
}

func newFakeOrchestrator() *fakeOrchestrator {
	return &fakeOrchestrator{done: make(chan struct{})}
}

func (f *fakeOrchestrator) Submit(ctx context.Context, sel upload.Selection, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := sel.Validate(upload.DefaultLimits()); err != nil {
		return err
	}
	if err := upload.ValidateName(name); err != nil {
		return err
	}
	f.user, _ = store.UserFromContext(ctx)
	f.name = name
	f.sel = sel
	if f.submitErr != nil {
		return f.submitErr
	}
	f.snap = orchestrator.Snapshot{Stage: orchestrator.StageProcessing, Progress: 10, LectureID: "lec-1", JobID: "job-1"}
	return nil
}

func (f *fakeOrchestrator) Snapshot() orchestrator.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeOrchestrator) Wait(ctx context.Context) (orchestrator.Snapshot, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		return f.Snapshot(), ctx.Err()
	}
	return f.Snapshot(), nil
}

func (f *fakeOrchestrator) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.closeOnce.Do(func() { close(f.done) })
}

// finish ends the run the way a completed pipeline would.
func (f *fakeOrchestrator) finish() {
	f.closeOnce.Do(func() { close(f.done) })
}

func (f *fakeOrchestrator) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type testServer struct {
	engine *gin.Engine
	api    *API
	store  store.Store
	orch   *fakeOrchestrator
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithRetention(t, time.Hour)
}

func setupTestServerWithRetention(t *testing.T, retention time.Duration) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpDir := t.TempDir()
	cfg := &config.Config{
		Auth: config.AuthConfig{Tokens: map[string]string{
			aliceToken: "alice",
			bobToken:   "bob",
		}},
		Paths:  config.PathsConfig{Temp: filepath.Join(tmpDir, "temp")},
		Server: config.ServerConfig{UploadRetention: retention},
	}

	st, err := store.NewFileStore(filepath.Join(tmpDir, "store.json"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	ts := &testServer{store: st, orch: newFakeOrchestrator()}
	factory := func() orchestrator.Orchestrator { return ts.orch }

	engine := gin.New()
	engine.Use(gin.Recovery())
	api := NewAPI(cfg, st, factory, logger.New("error", "text"))
	registerRoutes(engine, api, Auth(cfg.Auth.Tokens, ""))
	ts.engine = engine
	ts.api = api

	t.Cleanup(func() {
		api.uploads.closeAll()
		st.Close()
	})
	return ts
}

func (ts *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, name string, audio []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if name != "" {
		if err := w.WriteField("name", name); err != nil {
			t.Fatal(err)
		}
	}
	if audio != nil {
		part, err := w.CreateFormFile("audio", "lecture.mp3")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(audio)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

var mp3Audio = []byte{'I', 'D', '3', 4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
}

func TestHealthHandler(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token"},
		{name: "unknown token", token: "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/lectures", nil), tt.token)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestCreateUpload(t *testing.T) {
	tests := []struct {
		name       string
		lecture    string
		audio      []byte
		wantStatus int
	}{
		{name: "accepted", lecture: "Intro", audio: mp3Audio, wantStatus: http.StatusAccepted},
		{name: "missing audio", lecture: "Intro", wantStatus: http.StatusBadRequest},
		{name: "missing name", audio: mp3Audio, wantStatus: http.StatusBadRequest},
		{name: "invalid audio", lecture: "Intro", audio: []byte("plain text, not audio"), wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t)

			rec := ts.do(uploadRequest(t, tt.lecture, tt.audio), aliceToken)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d (%s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusAccepted {
				return
			}

			var body struct {
				ID     string                `json:"id"`
				Upload orchestrator.Snapshot `json:"upload"`
			}
			decode(t, rec, &body)
			if body.ID == "" || body.Upload.Stage != orchestrator.StageProcessing {
				t.Errorf("unexpected body %+v", body)
			}
			if ts.orch.user != "alice" || ts.orch.name != "Intro" {
				t.Errorf("submitted as %q/%q, want alice/Intro", ts.orch.user, ts.orch.name)
			}
		})
	}
}

func TestUploadLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(uploadRequest(t, "Intro", mp3Audio), aliceToken)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	decode(t, rec, &created)
	path := "/api/uploads/" + created.ID

	rec = ts.do(httptest.NewRequest(http.MethodGet, path, nil), aliceToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap orchestrator.Snapshot
	decode(t, rec, &snap)
	if snap.LectureID != "lec-1" {
		t.Errorf("LectureID = %q, want lec-1", snap.LectureID)
	}

	if rec := ts.do(httptest.NewRequest(http.MethodGet, path, nil), bobToken); rec.Code != http.StatusNotFound {
		t.Errorf("other user: expected 404, got %d", rec.Code)
	}

	if rec := ts.do(httptest.NewRequest(http.MethodDelete, path, nil), aliceToken); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if !ts.orch.isClosed() {
		t.Error("orchestrator not closed on delete")
	}
	if rec := ts.do(httptest.NewRequest(http.MethodGet, path, nil), aliceToken); rec.Code != http.StatusNotFound {
		t.Errorf("after delete: expected 404, got %d", rec.Code)
	}
}

func TestFinishedUploadsExpire(t *testing.T) {
	tests := []struct {
		name      string
		retention time.Duration
		wantGone  bool
	}{
		{name: "short retention", retention: 10 * time.Millisecond, wantGone: true},
		{name: "long retention", retention: time.Hour, wantGone: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServerWithRetention(t, tt.retention)

			rec := ts.do(uploadRequest(t, "Intro", mp3Audio), aliceToken)
			if rec.Code != http.StatusAccepted {
				t.Fatalf("expected 202, got %d", rec.Code)
			}
			var created struct {
				ID string `json:"id"`
			}
			decode(t, rec, &created)
			path := "/api/uploads/" + created.ID

			ts.orch.finish()

			if !tt.wantGone {
				time.Sleep(50 * time.Millisecond)
				if rec := ts.do(httptest.NewRequest(http.MethodGet, path, nil), aliceToken); rec.Code != http.StatusOK {
					t.Errorf("within retention: expected 200, got %d", rec.Code)
				}
				return
			}

			deadline := time.Now().Add(5 * time.Second)
			for ts.api.uploads.count() != 0 {
				if time.Now().After(deadline) {
					t.Fatalf("registry still holds %d uploads", ts.api.uploads.count())
				}
				time.Sleep(5 * time.Millisecond)
			}
			if rec := ts.do(httptest.NewRequest(http.MethodGet, path, nil), aliceToken); rec.Code != http.StatusNotFound {
				t.Errorf("after retention: expected 404, got %d", rec.Code)
			}
		})
	}
}

func TestLectureRoutes(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	lecture, err := ts.store.CreateLecture(ctx, domain.Lecture{UserID: "alice", Title: "Thermo", Status: domain.LectureCompleted})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ts.store.UpsertSummary(ctx, domain.SummaryRecord{LectureID: lecture.ID, Title: "Thermo summary"}); err != nil {
		t.Fatal(err)
	}
	bare, err := ts.store.CreateLecture(ctx, domain.Lecture{UserID: "alice", Title: "No summary"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{name: "list", path: "/api/lectures", token: aliceToken, wantStatus: http.StatusOK},
		{name: "get own", path: "/api/lectures/" + lecture.ID, token: aliceToken, wantStatus: http.StatusOK},
		{name: "get other user", path: "/api/lectures/" + lecture.ID, token: bobToken, wantStatus: http.StatusNotFound},
		{name: "get missing", path: "/api/lectures/missing", token: aliceToken, wantStatus: http.StatusNotFound},
		{name: "summary", path: "/api/lectures/" + lecture.ID + "/summary", token: aliceToken, wantStatus: http.StatusOK},
		{name: "summary missing", path: "/api/lectures/" + bare.ID + "/summary", token: aliceToken, wantStatus: http.StatusNotFound},
		{name: "export", path: "/api/lectures/" + lecture.ID + "/export", token: aliceToken, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(httptest.NewRequest(http.MethodGet, tt.path, nil), tt.token)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d (%s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/lectures", nil), bobToken)
	var lectures []domain.Lecture
	decode(t, rec, &lectures)
	if len(lectures) != 0 {
		t.Errorf("bob sees %d lectures, want 0", len(lectures))
	}
}
