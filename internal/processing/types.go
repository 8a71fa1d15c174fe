package processing

import "strings"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether a job in this status will not change again.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Attachment is a local file sent with a job submission.
type Attachment struct {
	Path string
	Name string
}

type JobRequest struct {
	Audio    Attachment
	Slides   *Attachment
	Language string
	Options  map[string]interface{}
}

type JobHandle struct {
	JobID  string `json:"job_id"`
	Status Status `json:"status"`
}

type JobStatus struct {
	JobID    string  `json:"job_id"`
	Status   Status  `json:"status"`
	Stage    string  `json:"stage"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message"`
	Error    string  `json:"error"`
}

type Sentence struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Transcription struct {
	Sentences []Sentence `json:"sentences"`
}

type SlideContent struct {
	SlideNumber int    `json:"slide_number"`
	Text        string `json:"text"`
}

type Alignment struct {
	Coverage float64 `json:"coverage"`
}

type JobResult struct {
	Transcription Transcription  `json:"transcription"`
	Slides        []SlideContent `json:"slides"`
	Alignment     *Alignment     `json:"alignment"`
	DocumentText  string         `json:"document_text"`
}

// Transcript joins the transcribed sentences into one text.
func (r JobResult) Transcript() string {
	parts := make([]string, 0, len(r.Transcription.Sentences))
	for _, s := range r.Transcription.Sentences {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Duration returns the end time of the last sentence in seconds.
func (r JobResult) Duration() float64 {
	var end float64
	for _, s := range r.Transcription.Sentences {
		if s.End > end {
			end = s.End
		}
	}
	return end
}

// HasDocumentText reports whether the job produced text worth summarizing.
func (r JobResult) HasDocumentText() bool {
	return strings.TrimSpace(r.DocumentText) != ""
}
