package models

import "time"

// Grade is one mark sheet per student per subject, enforced by a unique
// (student_id, subject_id) constraint and written via upsert. TotalMarks is
// always recomputed server-side as the sum of the three components.
type Grade struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	QuizMarks  float64   `db:"quiz_marks" json:"quiz_marks"`
	MidMarks   float64   `db:"mid_marks" json:"mid_marks"`
	FinalMarks float64   `db:"final_marks" json:"final_marks"`
	TotalMarks float64   `db:"total_marks" json:"total_marks"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// GradeWithSubject joins a grade with its subject name.
type GradeWithSubject struct {
	Grade
	SubjectName string `db:"subject_name" json:"subject_name"`
}

// GradeEntry is one item of a bulk save.
type GradeEntry struct {
	StudentID  string  `json:"student_id" validate:"required"`
	QuizMarks  float64 `json:"quiz_marks"`
	MidMarks   float64 `json:"mid_marks"`
	FinalMarks float64 `json:"final_marks"`
}

// MarkRow pairs a student with their current marks for the marks roster.
type MarkRow struct {
	StudentID   string  `json:"student_id"`
	StudentCode *string `json:"student_code,omitempty"`
	Name        string  `json:"name"`
	QuizMarks   float64 `json:"quiz_marks"`
	MidMarks    float64 `json:"mid_marks"`
	FinalMarks  float64 `json:"final_marks"`
	TotalMarks  float64 `json:"total_marks"`
}
