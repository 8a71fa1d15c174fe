package probe

import "context"

// Prober reads details from local media files.
type Prober interface {
	// Duration returns the length of an audio file in seconds.
	Duration(ctx context.Context, path string) (float64, error)
	// PageCount returns the number of pages of a PDF.
	PageCount(path string) (int, error)
}
