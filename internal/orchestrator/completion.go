package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thivian17/lecturelink/internal/domain"
	"github.com/thivian17/lecturelink/internal/processing"
)

// complete runs the post-completion pipeline. It is entered at most once,
// by the poll that took the completion guard.
func (o *implOrchestrator) complete(ctx context.Context) {
	o.mu.Lock()
	lectureID := o.snap.LectureID
	jobID := o.snap.JobID
	sel := o.selection
	title := o.title
	o.mu.Unlock()

	o.update(func(s *Snapshot) {
		s.Stage = StageSummary
		s.Progress = progressSummary
		s.Message = "Generating summary..."
	})

	hasSlides := sel.HasSlides()
	lectureUpdate := domain.LectureUpdate{
		Status:       domain.Ptr(domain.LectureCompleted),
		HasSlides:    domain.Ptr(hasSlides),
		HasAlignment: domain.Ptr(hasSlides),
		JobID:        domain.Ptr(jobID),
	}

	var summary *domain.Summary
	result, err := o.processing.GetResult(ctx, jobID)
	if err != nil {
		o.logger.Warn(ctx, "Fetching result for job %s failed, saving lecture without summary: %v", jobID, err)
	} else {
		o.applyResult(ctx, &lectureUpdate, result)

		if result.HasDocumentText() {
			generated, err := o.summaries.GenerateSummary(ctx, result.DocumentText, title)
			if err != nil {
				o.logger.Warn(ctx, "Summary generation failed, saving lecture without summary: %v", err)
			} else {
				summary = &generated
			}
		} else {
			o.logger.Info(ctx, "Job %s produced no document text, skipping summary", jobID)
		}
	}

	o.update(func(s *Snapshot) {
		s.Stage = StageSaving
		s.Progress = progressSaving
		s.Message = "Saving lecture..."
	})

	if summary != nil {
		if _, err := o.store.UpsertSummary(ctx, domain.NewSummaryRecord(lectureID, *summary)); err != nil {
			o.logger.Warn(ctx, "Saving summary for lecture %s failed: %v", lectureID, err)
		}
	}

	if err := o.store.UpdateLecture(ctx, lectureID, lectureUpdate); err != nil {
		o.logger.Error(ctx, "Marking lecture %s completed failed: %v", lectureID, err)
		o.enterError(fmt.Errorf("%w: %w", ErrSaveLecture, err), ErrSaveLecture.Error())
		return
	}

	o.cleanup(ctx, jobID)

	o.update(func(s *Snapshot) {
		s.Stage = StageComplete
		s.Progress = progressComplete
		s.Message = "Processing complete!"
	})
	o.logger.Info(ctx, "Lecture %s completed", lectureID)

	o.scheduleNavigation(lectureID)
}

// applyResult copies transcript details from the job result onto the
// pending lecture update, falling back to local probing.
func (o *implOrchestrator) applyResult(ctx context.Context, u *domain.LectureUpdate, result processing.JobResult) {
	if transcript := result.Transcript(); transcript != "" {
		u.Transcript = domain.Ptr(transcript)
	}

	duration := result.Duration()
	slideCount := len(result.Slides)

	if o.prober != nil {
		o.mu.Lock()
		sel := o.selection
		o.mu.Unlock()

		if duration == 0 {
			if d, err := o.prober.Duration(ctx, sel.Audio.Path); err != nil {
				o.logger.Debug(ctx, "Probing duration of %s failed: %v", sel.Audio.Name, err)
			} else {
				duration = d
			}
		}
		if slideCount == 0 && sel.Slides != nil && strings.HasSuffix(strings.ToLower(sel.Slides.Name), ".pdf") {
			if n, err := o.prober.PageCount(sel.Slides.Path); err != nil {
				o.logger.Debug(ctx, "Counting pages of %s failed: %v", sel.Slides.Name, err)
			} else {
				slideCount = n
			}
		}
	}

	if duration > 0 {
		u.DurationSeconds = domain.Ptr(duration)
	}
	if slideCount > 0 {
		u.SlideCount = domain.Ptr(slideCount)
	}
}

// cleanup deletes the remote job. Failures never reach the user.
func (o *implOrchestrator) cleanup(ctx context.Context, jobID string) {
	if err := o.processing.DeleteJob(ctx, jobID); err != nil {
		o.logger.Warn(ctx, "Failed to clean up job %s: %v", jobID, err)
	}
}

func (o *implOrchestrator) scheduleNavigation(lectureID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed.Load() {
		return
	}

	o.navTimer = time.AfterFunc(o.opts.RedirectDelay, func() {
		if o.closed.Load() {
			return
		}
		if o.navigator != nil {
			o.navigator.Navigate(lectureID)
		}
		o.update(func(s *Snapshot) {
			s.Redirect = lectureID
		})
		o.finish()
	})
}

// failRemote records a job the service reported as failed.
func (o *implOrchestrator) failRemote(ctx context.Context, status processing.JobStatus) {
	o.mu.Lock()
	lectureID := o.snap.LectureID
	jobID := o.snap.JobID
	o.mu.Unlock()

	message := strings.TrimSpace(status.Error)
	if message == "" {
		message = strings.TrimSpace(status.Message)
	}
	if message == "" {
		message = genericFailureMessage
	}

	err := o.store.UpdateLecture(ctx, lectureID, domain.LectureUpdate{
		Status: domain.Ptr(domain.LectureFailed),
		Error:  domain.Ptr(message),
		JobID:  domain.Ptr(jobID),
	})
	if err != nil {
		o.logger.Error(ctx, "Marking lecture %s failed: %v", lectureID, err)
	}

	o.logger.Warn(ctx, "Job %s failed: %s", jobID, message)
	o.enterError(fmt.Errorf("%w: %s", ErrJobFailed, message), message)
}

// cancelLecture marks a lecture failed when the orchestrator closes between
// creating it and handing the job off.
func (o *implOrchestrator) cancelLecture(ctx context.Context, lectureID string) {
	err := o.store.UpdateLecture(context.WithoutCancel(ctx), lectureID, domain.LectureUpdate{
		Status: domain.Ptr(domain.LectureFailed),
		Error:  domain.Ptr(cancelledMessage),
	})
	if err != nil {
		o.logger.Error(ctx, "Marking cancelled lecture %s failed: %v", lectureID, err)
		return
	}
	o.logger.Warn(ctx, "Closed before submitting a job, lecture %s marked failed", lectureID)
}
