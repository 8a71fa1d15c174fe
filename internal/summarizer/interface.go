package summarizer

import (
	"context"

	"github.com/thivian17/lecturelink/internal/domain"
)

// Summarizer generates a structured lecture summary with Gemini. It can
// stand in for the processing service's own summary endpoint.
type Summarizer interface {
	GenerateSummary(ctx context.Context, documentText, title string) (domain.Summary, error)
}
