package httpapi

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thivian17/lecturelink/internal/config"
	"github.com/thivian17/lecturelink/internal/domain"
	"github.com/thivian17/lecturelink/internal/logger"
	"github.com/thivian17/lecturelink/internal/orchestrator"
	"github.com/thivian17/lecturelink/internal/store"
	"github.com/thivian17/lecturelink/internal/summarizer"
	"github.com/thivian17/lecturelink/internal/upload"
)

type API struct {
	cfg             *config.Config
	store           store.Store
	newOrchestrator orchestrator.Factory
	logger          logger.Logger
	uploads         *registry
}

func NewAPI(cfg *config.Config, st store.Store, factory orchestrator.Factory, log logger.Logger) *API {
	return &API{
		cfg:             cfg,
		store:           st,
		newOrchestrator: factory,
		logger:          log,
		uploads:         newRegistry(),
	}
}

func registerRoutes(r *gin.Engine, api *API, auth gin.HandlerFunc) {
	r.GET("/api/health", api.handleHealth)

	apiGroup := r.Group("/api", auth)
	{
		apiGroup.POST("/uploads", api.handleCreateUpload)
		apiGroup.GET("/uploads/:id", api.handleGetUpload)
		apiGroup.DELETE("/uploads/:id", api.handleDeleteUpload)

		apiGroup.GET("/lectures", api.handleListLectures)
		apiGroup.GET("/lectures/:id", api.handleGetLecture)
		apiGroup.GET("/lectures/:id/summary", api.handleGetSummary)
		apiGroup.GET("/lectures/:id/export", api.handleExportLecture)
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *API) handleCreateUpload(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _ := store.UserFromContext(ctx)

	audioHeader, err := c.FormFile("audio")
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "missing audio file")
		return
	}
	slidesHeader, err := c.FormFile("slides")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		respondMessage(c, http.StatusBadRequest, "unable to read slides file")
		return
	}

	id := uuid.NewString()
	ctx = logger.WithField(ctx, "upload_id", id)
	dir := filepath.Join(a.cfg.Paths.Temp, id)

	sel, err := a.saveSelection(c, dir, audioHeader, slidesHeader)
	if err != nil {
		a.logger.Error(ctx, "Saving upload failed: %v", err)
		a.removePath(ctx, dir)
		respondMessage(c, http.StatusInternalServerError, "unable to store uploaded files")
		return
	}

	orch := a.newOrchestrator()
	if err := orch.Submit(ctx, sel, c.PostForm("name")); err != nil {
		orch.Close()
		a.removePath(ctx, dir)
		respondError(c, submitStatus(err), err)
		return
	}

	a.uploads.add(id, &uploadEntry{userID: userID, dir: dir, orch: orch})
	go a.track(ctx, id, orch, dir)

	c.JSON(http.StatusAccepted, gin.H{"id": id, "upload": orch.Snapshot()})
}

func (a *API) handleGetUpload(c *gin.Context) {
	userID, _ := store.UserFromContext(c.Request.Context())
	entry, ok := a.uploads.get(c.Param("id"), userID)
	if !ok {
		respondMessage(c, http.StatusNotFound, "upload not found")
		return
	}

	c.JSON(http.StatusOK, entry.orch.Snapshot())
}

func (a *API) handleDeleteUpload(c *gin.Context) {
	id := c.Param("id")
	userID, _ := store.UserFromContext(c.Request.Context())
	entry, ok := a.uploads.get(id, userID)
	if !ok {
		respondMessage(c, http.StatusNotFound, "upload not found")
		return
	}

	entry.orch.Close()
	a.uploads.remove(id)

	c.Status(http.StatusNoContent)
}

func (a *API) handleListLectures(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _ := store.UserFromContext(ctx)

	lectures, err := a.store.ListLectures(ctx, store.ListFilter{
		UserID: userID,
		Status: domain.LectureStatus(c.Query("status")),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if lectures == nil {
		lectures = []domain.Lecture{}
	}

	c.JSON(http.StatusOK, lectures)
}

func (a *API) handleGetLecture(c *gin.Context) {
	lecture, ok := a.ownedLecture(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, lecture)
}

func (a *API) handleGetSummary(c *gin.Context) {
	lecture, ok := a.ownedLecture(c)
	if !ok {
		return
	}

	summary, err := a.store.GetSummaryByLecture(c.Request.Context(), lecture.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondMessage(c, http.StatusNotFound, "summary not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (a *API) handleExportLecture(c *gin.Context) {
	lecture, ok := a.ownedLecture(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	summary, err := a.store.GetSummaryByLecture(ctx, lecture.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondMessage(c, http.StatusNotFound, "summary not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := os.MkdirAll(a.cfg.Paths.Temp, 0755); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	out := filepath.Join(a.cfg.Paths.Temp, fmt.Sprintf("%s-%s.docx", lecture.ID, uuid.NewString()))
	defer a.removePath(ctx, out)

	if err := summarizer.ExportDocx(lecture, summary, out); err != nil {
		a.logger.Error(ctx, "Export of lecture %s failed: %v", lecture.ID, err)
		respondMessage(c, http.StatusInternalServerError, "unable to export summary")
		return
	}

	c.FileAttachment(out, exportFilename(lecture))
}

// ownedLecture loads the :id lecture and writes a 404 unless it belongs to
// the caller.
func (a *API) ownedLecture(c *gin.Context) (domain.Lecture, bool) {
	ctx := c.Request.Context()
	userID, _ := store.UserFromContext(ctx)

	lecture, err := a.store.GetLecture(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondMessage(c, http.StatusNotFound, "lecture not found")
			return domain.Lecture{}, false
		}
		respondError(c, http.StatusInternalServerError, err)
		return domain.Lecture{}, false
	}
	if lecture.UserID != userID {
		respondMessage(c, http.StatusNotFound, "lecture not found")
		return domain.Lecture{}, false
	}

	return lecture, true
}

func (a *API) saveSelection(c *gin.Context, dir string, audio, slides *multipart.FileHeader) (upload.Selection, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return upload.Selection{}, fmt.Errorf("create upload dir: %w", err)
	}

	audioPath := filepath.Join(dir, filepath.Base(audio.Filename))
	if err := c.SaveUploadedFile(audio, audioPath); err != nil {
		return upload.Selection{}, fmt.Errorf("save audio: %w", err)
	}

	slidesPath := ""
	if slides != nil {
		slidesPath = filepath.Join(dir, "slides-"+filepath.Base(slides.Filename))
		if err := c.SaveUploadedFile(slides, slidesPath); err != nil {
			return upload.Selection{}, fmt.Errorf("save slides: %w", err)
		}
	}

	return upload.NewSelection(audioPath, slidesPath)
}

// track removes the upload's files once its orchestrator finishes.
func (a *API) track(ctx context.Context, id string, orch orchestrator.Orchestrator, dir string) {
	ctx = context.WithoutCancel(ctx)
	snap, err := orch.Wait(ctx)
	if err != nil {
		a.logger.Warn(ctx, "Upload %s ended in %s: %v", id, snap.Stage, err)
	} else {
		a.logger.Info(ctx, "Upload %s finished, lecture %s", id, snap.LectureID)
	}
	a.removePath(ctx, dir)

	time.AfterFunc(a.cfg.Server.UploadRetention, func() {
		a.uploads.remove(id)
	})
}

func (a *API) removePath(ctx context.Context, path string) {
	if err := os.RemoveAll(path); err != nil {
		a.logger.Warn(ctx, "Failed to remove %s: %v", path, err)
	}
}

func submitStatus(err error) int {
	switch {
	case errors.Is(err, upload.ErrMissingFile),
		errors.Is(err, upload.ErrInvalidType),
		errors.Is(err, upload.ErrMissingName):
		return http.StatusBadRequest
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, orchestrator.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func exportFilename(l domain.Lecture) string {
	name := l.Title
	if name == "" {
		name = l.ID
	}
	return name + ".docx"
}

func respondError(c *gin.Context, status int, err error) {
	respondMessage(c, status, err.Error())
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
