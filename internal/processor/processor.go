package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/thivian17/lecturelink/internal/logger"
	"github.com/thivian17/lecturelink/internal/store"
	"github.com/thivian17/lecturelink/internal/upload"
)

// Process submits the recording (and slides sharing its basename) and waits
// for the submission to finish. Files are archived either way.
func (p *implProcessor) Process(ctx context.Context, audioPath string) error {
	startTime := time.Now()
	originalFilename := filepath.Base(audioPath)
	ctx = logger.WithField(ctx, "file", originalFilename)

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting lecture submission: %s", audioPath)
	p.logger.Info(ctx, "========================================")

	slidesPath := pairedSlides(audioPath)

	// Step 1: Move files out of the inbox
	files, err := p.moveAll(ctx, p.cfg.Paths.Temp, audioPath, slidesPath)
	if err != nil {
		return fmt.Errorf("stage files: %w", err)
	}

	// Step 2: Build the selection
	sel, err := upload.NewSelection(files[0], files[1])
	if err == nil {
		err = sel.Validate(p.limits())
	}
	if err != nil {
		p.archive(ctx, true, files...)
		return fmt.Errorf("build selection: %w", err)
	}

	// Step 3: Submit and wait for a terminal stage
	ctx = store.WithUser(ctx, p.cfg.Auth.UserID)
	orch := p.newOrchestrator()
	defer orch.Close()

	name := LectureName(originalFilename)
	if err := orch.Submit(ctx, sel, name); err != nil {
		p.archive(ctx, true, files...)
		return fmt.Errorf("submit: %w", err)
	}

	snap, err := orch.Wait(ctx)
	if err != nil {
		p.archive(ctx, true, files...)
		return fmt.Errorf("process lecture: %w", err)
	}

	// Step 4: Archive the originals
	p.archive(ctx, false, files...)

	duration := time.Since(startTime)
	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Submission completed successfully!")
	p.logger.Info(ctx, "Lecture: %s (%s)", name, snap.LectureID)
	p.logger.Info(ctx, "Processing time: %s", duration)
	p.logger.Info(ctx, "========================================")

	return nil
}

// LectureName derives a display name from a recording's file name.
func LectureName(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	name := strings.Join(strings.Fields(base), " ")
	if name == "" {
		return filename
	}
	return name
}

func (p *implProcessor) limits() upload.Limits {
	limits := upload.Limits{
		MaxAudioBytes:  p.cfg.MaxAudioBytes(),
		MaxSlidesBytes: p.cfg.MaxSlidesBytes(),
	}
	if limits == (upload.Limits{}) {
		return upload.DefaultLimits()
	}
	return limits
}
