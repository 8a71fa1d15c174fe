package orchestrator

import (
	"context"

	"github.com/thivian17/lecturelink/internal/upload"
)

// Orchestrator drives one lecture submission from file selection to a
// terminal stage. Instances are single use.
type Orchestrator interface {
	// Submit validates the selection, creates the lecture record, submits
	// the job and starts polling. It returns once polling has started.
	// A validation error leaves the instance idle so it can be resubmitted.
	Submit(ctx context.Context, sel upload.Selection, name string) error
	Snapshot() Snapshot
	// Wait blocks until the instance finishes or ctx is done. It returns
	// the terminal error when the submission ended in the error stage.
	Wait(ctx context.Context) (Snapshot, error)
	// Close stops polling and any pending navigation. In-flight calls are
	// left to finish but their results are discarded.
	Close()
}

// Navigator moves the user to a finished lecture.
type Navigator interface {
	Navigate(lectureID string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(lectureID string)

func (f NavigatorFunc) Navigate(lectureID string) { f(lectureID) }

// MediaProber inspects local files for details the service may not report.
type MediaProber interface {
	Duration(ctx context.Context, path string) (float64, error)
	PageCount(path string) (int, error)
}

// Factory returns a fresh Orchestrator for each submission.
type Factory func() Orchestrator
