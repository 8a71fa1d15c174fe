package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/thivian17/lecturelink/internal/domain"
	"github.com/thivian17/lecturelink/internal/logger"
	"github.com/thivian17/lecturelink/internal/processing"
	"github.com/thivian17/lecturelink/internal/upload"
)

func (o *implOrchestrator) Submit(ctx context.Context, sel upload.Selection, name string) error {
	o.mu.Lock()
	if o.snap.Stage != StageIdle || o.closed.Load() {
		o.mu.Unlock()
		return ErrAlreadySubmitted
	}

	if err := validate(sel, name, o.opts.Limits); err != nil {
		o.snap.Error = err.Error()
		snap, seq := o.captureLocked()
		o.mu.Unlock()
		o.publish(snap, seq)
		return err
	}

	o.title = strings.TrimSpace(name)
	o.selection = sel
	o.snap = Snapshot{
		Stage:    StageUploading,
		Progress: progressUploadStarted,
		Message:  "Uploading files...",
	}
	snap, seq := o.captureLocked()
	o.mu.Unlock()
	o.publish(snap, seq)

	user, err := o.store.CurrentUser(ctx)
	if err != nil {
		return o.abort(ctx, fmt.Errorf("%w: %w", ErrUnauthenticated, err))
	}
	if user == nil {
		return o.abort(ctx, ErrUnauthenticated)
	}

	if o.closed.Load() {
		return ErrClosed
	}

	lecture, err := o.store.CreateLecture(ctx, domain.Lecture{
		UserID:    user.ID,
		Title:     o.title,
		Status:    domain.LectureProcessing,
		HasSlides: sel.HasSlides(),
	})
	if err != nil {
		return o.abort(ctx, fmt.Errorf("%w: %w", ErrCreateLecture, err))
	}
	ctx = logger.WithField(ctx, "lecture_id", lecture.ID)
	o.logger.Info(ctx, "Created lecture %q for user %s", o.title, user.ID)

	o.mu.Lock()
	o.snap.LectureID = lecture.ID
	o.mu.Unlock()

	if o.closed.Load() {
		o.cancelLecture(ctx, lecture.ID)
		return ErrClosed
	}

	handle, err := o.processing.SubmitJob(ctx, jobRequest(sel, o.opts))
	if err != nil {
		o.logger.Warn(ctx, "Lecture %s left in processing without a job", lecture.ID)
		return o.abort(ctx, fmt.Errorf("%w: %w", ErrSubmitJob, err))
	}
	ctx = logger.WithField(ctx, "job_id", handle.JobID)
	o.logger.Info(ctx, "Job %s accepted", handle.JobID)

	o.mu.Lock()
	if o.closed.Load() {
		o.mu.Unlock()
		o.logger.Warn(ctx, "Closed before polling started, job %s is not tracked", handle.JobID)
		return ErrClosed
	}
	o.snap.JobID = handle.JobID
	o.snap.Stage = StageProcessing
	o.snap.Progress = progressJobAccepted
	o.snap.Message = "Processing started..."
	snap, seq = o.captureLocked()
	o.mu.Unlock()
	o.publish(snap, seq)

	// Polling outlives the submit call. Keep the caller's values, drop its
	// cancellation.
	o.startPolling(context.WithoutCancel(ctx), handle.JobID)
	return nil
}

func validate(sel upload.Selection, name string, limits upload.Limits) error {
	if err := sel.Validate(limits); err != nil {
		return err
	}
	return upload.ValidateName(name)
}

func jobRequest(sel upload.Selection, opts Options) processing.JobRequest {
	req := processing.JobRequest{
		Audio:    processing.Attachment{Path: sel.Audio.Path, Name: sel.Audio.Name},
		Language: opts.Language,
		Options:  opts.JobOptions,
	}
	if sel.Slides != nil {
		req.Slides = &processing.Attachment{Path: sel.Slides.Path, Name: sel.Slides.Name}
	}
	return req
}

// abort ends a submission that failed before polling started.
func (o *implOrchestrator) abort(ctx context.Context, err error) error {
	o.logger.Error(ctx, "Submission aborted: %v", err)
	o.enterError(err, err.Error())
	return err
}

// enterError moves to the error stage and releases waiters.
func (o *implOrchestrator) enterError(err error, message string) {
	o.stopPolling()

	o.mu.Lock()
	o.err = err
	o.snap.Stage = StageError
	o.snap.Error = message
	o.snap.Message = message
	snap, seq := o.captureLocked()
	o.mu.Unlock()

	o.publish(snap, seq)
	o.finish()
}

func (o *implOrchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

func (o *implOrchestrator) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case <-o.done:
	case <-ctx.Done():
		return o.Snapshot(), ctx.Err()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap, o.err
}

func (o *implOrchestrator) Close() {
	if !o.closed.CompareAndSwap(false, true) {
		return
	}
	o.stopPolling()

	o.mu.Lock()
	if o.navTimer != nil {
		o.navTimer.Stop()
	}
	if !o.snap.Stage.IsTerminal() && o.err == nil {
		o.err = ErrClosed
	}
	o.mu.Unlock()

	o.finish()
}

func (o *implOrchestrator) finish() {
	o.doneOnce.Do(func() {
		close(o.done)
	})
}

// captureLocked copies the snapshot and stamps it with the next sequence
// number. o.mu must be held.
func (o *implOrchestrator) captureLocked() (Snapshot, uint64) {
	o.seq++
	return o.snap, o.seq
}

// publish hands snap to OnChange unless a newer snapshot already went out.
func (o *implOrchestrator) publish(snap Snapshot, seq uint64) {
	if o.opts.OnChange == nil {
		return
	}

	o.publishMu.Lock()
	defer o.publishMu.Unlock()
	if seq <= o.published {
		return
	}
	o.published = seq
	o.opts.OnChange(snap)
}

// update mutates the snapshot under the lock and publishes the result.
func (o *implOrchestrator) update(fn func(s *Snapshot)) {
	o.mu.Lock()
	fn(&o.snap)
	snap, seq := o.captureLocked()
	o.mu.Unlock()
	o.publish(snap, seq)
}
