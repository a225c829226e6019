package models

import "time"

// Subject is a taught subject. Name is unique.
type Subject struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TeacherSubject links a teacher to a subject for a class.
type TeacherSubject struct {
	ID        string  `db:"id" json:"id"`
	TeacherID string  `db:"teacher_id" json:"teacher_id"`
	SubjectID string  `db:"subject_id" json:"subject_id"`
	ClassName *string `db:"class_name" json:"class_name,omitempty"`
}

// TeacherSubjectDetail joins the link with subject and teacher names.
type TeacherSubjectDetail struct {
	ID          string  `db:"id" json:"id"`
	TeacherID   string  `db:"teacher_id" json:"teacher_id"`
	SubjectID   string  `db:"subject_id" json:"subject_id"`
	ClassName   *string `db:"class_name" json:"class_name,omitempty"`
	SubjectName string  `db:"subject_name" json:"subject_name"`
	TeacherName string  `db:"teacher_name" json:"teacher_name"`
}

// SubjectWithTeachers is a subject plus its linked teachers.
type SubjectWithTeachers struct {
	Subject
	Teachers []SubjectTeacher `json:"teachers"`
}

// SubjectTeacher names one teacher linked to a subject.
type SubjectTeacher struct {
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}
