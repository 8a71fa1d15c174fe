package orchestrator

import "github.com/thivian17/lecturelink/internal/processing"

type Stage string

const (
	StageIdle       Stage = "idle"
	StageUploading  Stage = "uploading"
	StageProcessing Stage = "processing"
	StageSummary    Stage = "summary"
	StageSaving     Stage = "saving"
	StageComplete   Stage = "complete"
	StageError      Stage = "error"
)

// IsTerminal reports whether no further transition can happen.
func (s Stage) IsTerminal() bool {
	return s == StageComplete || s == StageError
}

// Progress checkpoints shown to the user.
const (
	progressUploadStarted = 5
	progressJobAccepted   = 10
	progressProcessingMax = 90
	progressSummary       = 92
	progressSaving        = 96
	progressComplete      = 100
)

// Snapshot is the externally visible state of an orchestrator.
type Snapshot struct {
	Stage     Stage  `json:"stage"`
	Progress  int    `json:"progress"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	LectureID string `json:"lecture_id,omitempty"`
	JobID     string `json:"job_id,omitempty"`
	// Redirect is the lecture id navigated to, once navigation has fired.
	Redirect string `json:"redirect,omitempty"`
}

var stageMessages = map[string]string{
	"queued":            "Waiting in queue...",
	"converting_audio":  "Converting audio...",
	"transcribing":      "Transcribing audio...",
	"extracting_slides": "Extracting slide content...",
	"aligning":          "Aligning transcript with slides...",
	"finalizing":        "Finalizing results...",
}

// statusMessage derives the display message for a poll response.
func statusMessage(st processing.JobStatus) string {
	if msg, ok := stageMessages[st.Stage]; ok {
		return msg
	}
	if st.Status == processing.StatusPending {
		return stageMessages["queued"]
	}
	return "Processing..."
}

// displayProgress maps remote progress (0-100) onto the processing band.
func displayProgress(remote float64) int {
	if remote < 0 {
		remote = 0
	}
	if remote > 100 {
		remote = 100
	}
	return progressJobAccepted + int(remote*float64(progressProcessingMax-progressJobAccepted)/100)
}
