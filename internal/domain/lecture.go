package domain

import "time"

// LectureStatus is the persisted lifecycle of a lecture.
type LectureStatus string

const (
	LectureProcessing LectureStatus = "processing"
	LectureCompleted  LectureStatus = "completed"
	LectureFailed     LectureStatus = "failed"
)

// IsTerminal reports whether the status can no longer change.
func (s LectureStatus) IsTerminal() bool {
	return s == LectureCompleted || s == LectureFailed
}

type Lecture struct {
	ID              string        `json:"id" firestore:"id"`
	UserID          string        `json:"user_id" firestore:"user_id"`
	Title           string        `json:"title" firestore:"title"`
	Status          LectureStatus `json:"status" firestore:"status"`
	DurationSeconds float64       `json:"duration_seconds" firestore:"duration_seconds"`
	HasSlides       bool          `json:"has_slides" firestore:"has_slides"`
	HasAlignment    bool          `json:"has_alignment" firestore:"has_alignment"`
	SlideCount      int           `json:"slide_count" firestore:"slide_count"`
	Transcript      string        `json:"transcript,omitempty" firestore:"transcript"`
	JobID           string        `json:"job_id,omitempty" firestore:"job_id"`
	Error           string        `json:"error,omitempty" firestore:"error"`
	CreatedAt       time.Time     `json:"created_at" firestore:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" firestore:"updated_at"`
}

// LectureUpdate is a partial update. Nil fields are left untouched.
type LectureUpdate struct {
	Status          *LectureStatus
	DurationSeconds *float64
	HasSlides       *bool
	HasAlignment    *bool
	SlideCount      *int
	Transcript      *string
	JobID           *string
	Error           *string
}

// Apply copies the set fields of u onto l and stamps UpdatedAt.
func (u LectureUpdate) Apply(l *Lecture, now time.Time) {
	if u.Status != nil {
		l.Status = *u.Status
	}
	if u.DurationSeconds != nil {
		l.DurationSeconds = *u.DurationSeconds
	}
	if u.HasSlides != nil {
		l.HasSlides = *u.HasSlides
	}
	if u.HasAlignment != nil {
		l.HasAlignment = *u.HasAlignment
	}
	if u.SlideCount != nil {
		l.SlideCount = *u.SlideCount
	}
	if u.Transcript != nil {
		l.Transcript = *u.Transcript
	}
	if u.JobID != nil {
		l.JobID = *u.JobID
	}
	if u.Error != nil {
		l.Error = *u.Error
	}
	l.UpdatedAt = now
}

// Fields returns the set fields keyed by their stored name.
func (u LectureUpdate) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if u.Status != nil {
		fields["status"] = string(*u.Status)
	}
	if u.DurationSeconds != nil {
		fields["duration_seconds"] = *u.DurationSeconds
	}
	if u.HasSlides != nil {
		fields["has_slides"] = *u.HasSlides
	}
	if u.HasAlignment != nil {
		fields["has_alignment"] = *u.HasAlignment
	}
	if u.SlideCount != nil {
		fields["slide_count"] = *u.SlideCount
	}
	if u.Transcript != nil {
		fields["transcript"] = *u.Transcript
	}
	if u.JobID != nil {
		fields["job_id"] = *u.JobID
	}
	if u.Error != nil {
		fields["error"] = *u.Error
	}
	return fields
}

// Ptr returns a pointer to v. Handy for building LectureUpdate values.
func Ptr[T any](v T) *T {
	return &v
}
