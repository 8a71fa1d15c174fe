package domain

import "time"

type Concept struct {
	Name            string   `json:"name" firestore:"name"`
	Explanation     string   `json:"explanation" firestore:"explanation"`
	Importance      string   `json:"importance,omitempty" firestore:"importance"`
	SlideReferences []int    `json:"slide_references,omitempty" firestore:"slide_references"`
	Examples        []string `json:"examples,omitempty" firestore:"examples"`
}

type Definition struct {
	Term       string `json:"term" firestore:"term"`
	Definition string `json:"definition" firestore:"definition"`
}

// Summary is the canonical summary shape, independent of where it was
// generated.
type Summary struct {
	Title              string       `json:"title"`
	KeyConcepts        []Concept    `json:"key_concepts"`
	Definitions        []Definition `json:"definitions"`
	MainTakeaways      []string     `json:"main_takeaways"`
	StudyQuestions     []string     `json:"study_questions"`
	Difficulty         string       `json:"difficulty,omitempty"`
	EstimatedStudyTime string       `json:"estimated_study_time,omitempty"`
}

// SummaryRecord is the persisted summary of one lecture.
type SummaryRecord struct {
	ID                 string       `json:"id" firestore:"id"`
	LectureID          string       `json:"lecture_id" firestore:"lecture_id"`
	Title              string       `json:"title" firestore:"title"`
	KeyConcepts        []Concept    `json:"key_concepts" firestore:"key_concepts"`
	Definitions        []Definition `json:"definitions" firestore:"definitions"`
	ImportantPoints    []string     `json:"important_points" firestore:"important_points"`
	ActionItems        []string     `json:"action_items" firestore:"action_items"`
	Difficulty         string       `json:"difficulty,omitempty" firestore:"difficulty"`
	EstimatedStudyTime string       `json:"estimated_study_time,omitempty" firestore:"estimated_study_time"`
	CreatedAt          time.Time    `json:"created_at" firestore:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" firestore:"updated_at"`
}

// NewSummaryRecord maps a generated summary onto the stored record.
// Takeaways become important points and study questions become action items.
func NewSummaryRecord(lectureID string, s Summary) SummaryRecord {
	return SummaryRecord{
		LectureID:          lectureID,
		Title:              s.Title,
		KeyConcepts:        s.KeyConcepts,
		Definitions:        s.Definitions,
		ImportantPoints:    s.MainTakeaways,
		ActionItems:        s.StudyQuestions,
		Difficulty:         s.Difficulty,
		EstimatedStudyTime: s.EstimatedStudyTime,
	}
}
