package models

import "time"

// LiveRequestStatus enumerates the lifecycle of a live class request.
type LiveRequestStatus string

const (
	LivePending   LiveRequestStatus = "PENDING"
	LiveStarted   LiveRequestStatus = "STARTED"
	LiveEnded     LiveRequestStatus = "ENDED"
	LiveCancelled LiveRequestStatus = "CANCELLED"
)

// Valid reports whether the status is a known value.
func (s LiveRequestStatus) Valid() bool {
	switch s {
	case LivePending, LiveStarted, LiveEnded, LiveCancelled:
		return true
	}
	return false
}

// LiveRequest is an admin-initiated live class session for a subject.
type LiveRequest struct {
	ID         string            `db:"id" json:"id"`
	SubjectID  string            `db:"subject_id" json:"subject_id"`
	TeacherID  string            `db:"teacher_id" json:"teacher_id"`
	AdminID    string            `db:"admin_id" json:"admin_id"`
	StartTime  time.Time         `db:"start_time" json:"start_time"`
	RoomNumber string            `db:"room_number" json:"room_number"`
	Status     LiveRequestStatus `db:"status" json:"status"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}

// LiveRequestDetail joins subject, teacher and admin names.
type LiveRequestDetail struct {
	LiveRequest
	SubjectName string  `db:"subject_name" json:"subject_name"`
	TeacherName string  `db:"teacher_name" json:"teacher_name"`
	AdminName   *string `db:"admin_name" json:"admin_name,omitempty"`
}
