package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/thivian17/lecturelink/internal/httpapi"
	"github.com/thivian17/lecturelink/internal/orchestrator"
	"github.com/thivian17/lecturelink/internal/processor"
	"github.com/thivian17/lecturelink/internal/reconcile"
	"github.com/thivian17/lecturelink/internal/store"
	"github.com/thivian17/lecturelink/internal/summarizer"
	"github.com/thivian17/lecturelink/internal/upload"
	"github.com/thivian17/lecturelink/internal/watcher"
)

func (a *app) runSubmit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	audioPath := fs.String("audio", "", "audio recording (mp3, wav, m4a, aac, ogg, flac, webm)")
	slidesPath := fs.String("slides", "", "optional slides (pdf, pptx)")
	name := fs.String("name", "", "lecture name (defaults to the audio file name)")
	fs.Parse(args)

	if *name == "" && *audioPath != "" {
		*name = processor.LectureName(filepath.Base(*audioPath))
	}

	sel, err := upload.NewSelection(*audioPath, *slidesPath)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	lastStage := orchestrator.Stage("")
	onChange := func(s orchestrator.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.Stage != lastStage {
			lastStage = s.Stage
			fmt.Printf("[%3d%%] %s\n", s.Progress, s.Stage)
		}
		if s.Message != "" {
			fmt.Printf("       %s\n", s.Message)
		}
	}
	nav := orchestrator.NavigatorFunc(func(lectureID string) {
		fmt.Printf("Lecture ready: %s/lectures/%s\n", strings.TrimRight(a.cfg.Server.BaseURL, "/"), lectureID)
	})

	orch := a.orchestrators(nav, onChange)()
	defer orch.Close()

	ctx = store.WithUser(ctx, a.cfg.Auth.UserID)
	if err := orch.Submit(ctx, sel, *name); err != nil {
		return err
	}

	snap, err := orch.Wait(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Done: lecture %s\n", snap.LectureID)
	return nil
}

func (a *app) runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	scan := fs.Bool("scan", true, "submit recordings already in the inbox")
	settle := fs.Duration("settle", 500*time.Millisecond, "wait after a file appears before submitting it")
	fs.Parse(args)

	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "LectureLink inbox watcher")
	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	a.log.Info(ctx, "Max Concurrent Submissions: %d", a.cfg.Performance.MaxConcurrent)
	a.log.Info(ctx, "Processing service: %s", a.cfg.Processing.BaseURL)

	if err := ensureDirectories(a.cfg.Paths.Inbox, a.cfg.Paths.Archived, a.cfg.Paths.Temp); err != nil {
		return err
	}

	proc := processor.New(a.cfg, a.orchestrators(nil, nil), a.log)

	w, err := watcher.New(a.cfg.Paths.Inbox, proc.Process, a.log, watcher.Options{
		MaxConcurrent: a.cfg.Performance.MaxConcurrent,
		SettleDelay:   *settle,
		ScanExisting:  *scan,
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	a.log.Info(ctx, "Monitoring: %s", a.cfg.Paths.Inbox)
	a.log.Info(ctx, "Archive: %s", a.cfg.Paths.Archived)
	a.log.Info(ctx, "Press Ctrl+C to stop")
	a.log.Info(ctx, "========================================")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	a.log.Info(ctx, "Inbox watcher stopped")
	return nil
}

func (a *app) runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", a.cfg.Server.Port, "listen port")
	fs.Parse(args)
	a.cfg.Server.Port = *port

	if err := ensureDirectories(a.cfg.Paths.Temp); err != nil {
		return err
	}
	if len(a.cfg.Auth.Tokens) == 0 {
		a.log.Warn(ctx, "No auth tokens configured, every request runs as %q", a.cfg.Auth.UserID)
	}

	srv := httpapi.NewServer(a.cfg, a.store, a.orchestrators(nil, nil), a.log)
	return srv.Run(ctx)
}

func (a *app) runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	lectureID := fs.String("lecture", "", "lecture id")
	out := fs.String("out", "", "output .docx path (defaults to <lecture id>.docx)")
	fs.Parse(args)

	if *lectureID == "" {
		return fmt.Errorf("-lecture is required")
	}
	if *out == "" {
		*out = *lectureID + ".docx"
	}

	lecture, err := a.store.GetLecture(ctx, *lectureID)
	if err != nil {
		return fmt.Errorf("get lecture: %w", err)
	}
	summary, err := a.store.GetSummaryByLecture(ctx, lecture.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("lecture %s has no summary", lecture.ID)
		}
		return fmt.Errorf("get summary: %w", err)
	}

	if err := summarizer.ExportDocx(lecture, summary, *out); err != nil {
		return err
	}

	a.log.Info(ctx, "Exported %q to %s", lecture.Title, *out)
	return nil
}

func (a *app) runOrphans(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orphans", flag.ExitOnError)
	olderThan := fs.Duration("older-than", reconcile.DefaultOrphanAge,
		"only records created before now minus this duration; keep it above the longest job, a running job is indistinguishable from an orphan")
	user := fs.String("user", "", "restrict to one user id")
	markFailed := fs.Bool("mark-failed", false, "mark the listed records as failed")
	fs.Parse(args)

	r := reconcile.New(a.store, a.log, a.cfg.Performance.MaxConcurrent)

	orphans, err := r.ListOrphans(ctx, *user, *olderThan)
	if err != nil {
		return err
	}

	if len(orphans) == 0 {
		fmt.Println("No orphan lectures.")
		return nil
	}
	for _, l := range orphans {
		fmt.Fprintf(os.Stdout, "%s\t%s\t%s\t%s\n", l.ID, l.UserID, l.CreatedAt.Format(time.RFC3339), l.Title)
	}

	if !*markFailed {
		return nil
	}

	n, err := r.MarkFailed(ctx, orphans)
	fmt.Printf("Marked %d of %d lectures as failed.\n", n, len(orphans))
	return err
}
