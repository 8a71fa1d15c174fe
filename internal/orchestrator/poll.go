package orchestrator

import (
	"context"

	"github.com/thivian17/lecturelink/internal/processing"
)

// startPolling polls once immediately and then on every tick. Each poll
// runs on its own goroutine, so responses may overlap.
func (o *implOrchestrator) startPolling(ctx context.Context, jobID string) {
	t := o.newTicker(o.opts.PollInterval)

	o.mu.Lock()
	o.pollTicker = t
	o.mu.Unlock()

	go o.poll(ctx, jobID)

	go func() {
		for {
			select {
			case <-o.stopPoll:
				return
			case <-t.C():
				go o.poll(ctx, jobID)
			}
		}
	}()
}

func (o *implOrchestrator) stopPolling() {
	o.stopOnce.Do(func() {
		close(o.stopPoll)

		o.mu.Lock()
		if o.pollTicker != nil {
			o.pollTicker.Stop()
		}
		o.mu.Unlock()
	})
}

func (o *implOrchestrator) pollingStopped() bool {
	select {
	case <-o.stopPoll:
		return true
	default:
		return false
	}
}

func (o *implOrchestrator) poll(ctx context.Context, jobID string) {
	if o.pollingStopped() {
		return
	}

	status, err := o.processing.GetStatus(ctx, jobID)
	if err != nil {
		if !o.pollingStopped() {
			o.logger.Warn(ctx, "Status poll for job %s failed: %v", jobID, err)
		}
		return
	}

	o.handlePollResult(ctx, status)
}

// handlePollResult applies one status response. Only the first terminal
// response is acted on; everything after it is ignored.
func (o *implOrchestrator) handlePollResult(ctx context.Context, status processing.JobStatus) {
	if o.closed.Load() || o.completed.Load() {
		return
	}

	switch status.Status {
	case processing.StatusCompleted, processing.StatusFailed:
		if !o.completed.CompareAndSwap(false, true) {
			return
		}
		o.stopPolling()

		if status.Status == processing.StatusCompleted {
			o.complete(ctx)
		} else {
			o.failRemote(ctx, status)
		}
	default:
		o.mu.Lock()
		if o.completed.Load() || o.snap.Stage != StageProcessing {
			o.mu.Unlock()
			return
		}
		if p := displayProgress(status.Progress); p > o.snap.Progress {
			o.snap.Progress = p
		}
		o.snap.Message = statusMessage(status)
		snap, seq := o.captureLocked()
		o.mu.Unlock()

		o.publish(snap, seq)
		o.logger.Debug(ctx, "Job %s at %s (%.0f%%)", status.JobID, status.Stage, status.Progress)
	}
}
