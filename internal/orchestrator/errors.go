package orchestrator

import "errors"

var (
	ErrAlreadySubmitted = errors.New("submission already started")
	ErrUnauthenticated  = errors.New("you must be signed in to upload lectures")
	ErrCreateLecture    = errors.New("failed to create lecture record")
	ErrSubmitJob        = errors.New("failed to submit processing job")
	ErrJobFailed        = errors.New("processing failed")
	ErrSaveLecture      = errors.New("failed to save lecture")
	ErrClosed           = errors.New("orchestrator closed")
)

const (
	genericFailureMessage = "Processing failed. Please try again."
	cancelledMessage      = "Upload cancelled."
)
