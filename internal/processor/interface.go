package processor

import "context"

// Processor turns one inbox recording into a lecture submission.
type Processor interface {
	Process(ctx context.Context, audioPath string) error
}
