package models

import "time"

// Resource is a study file shared by a teacher with a class. Storage of the
// file itself is external; only the URL is kept.
type Resource struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	FileURL   string    `db:"file_url" json:"file_url"`
	ClassName string    `db:"class_name" json:"class_name"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ResourceDetail joins the subject name onto a resource.
type ResourceDetail struct {
	Resource
	SubjectName string `db:"subject_name" json:"subject_name"`
}
