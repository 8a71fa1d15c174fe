package processing

import (
	"context"

	"github.com/thivian17/lecturelink/internal/domain"
)

// SummaryGenerator turns derived document text into a structured summary.
type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, documentText, title string) (domain.Summary, error)
}

// Service is the remote lecture-processing service.
type Service interface {
	SummaryGenerator

	SubmitJob(ctx context.Context, req JobRequest) (JobHandle, error)
	GetStatus(ctx context.Context, jobID string) (JobStatus, error)
	GetResult(ctx context.Context, jobID string) (JobResult, error)
	// DeleteJob removes the job's server-side files. Deleting a job that
	// no longer exists is not an error.
	DeleteJob(ctx context.Context, jobID string) error
}
