package models

import "time"

// Announcement is a notice published by an admin or a teacher. A nil ClassName
// means the notice targets all classes. Class and subject scope are explicit
// columns rather than text encoded into the content.
type Announcement struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	AdminID   *string   `db:"admin_id" json:"admin_id,omitempty"`
	TeacherID *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	ClassName *string   `db:"class_name" json:"class_name,omitempty"`
	SubjectID *string   `db:"subject_id" json:"subject_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AnnouncementDetail joins author and subject names onto the notice.
type AnnouncementDetail struct {
	Announcement
	AuthorName  *string `db:"author_name" json:"author_name,omitempty"`
	SubjectName *string `db:"subject_name" json:"subject_name,omitempty"`
}
