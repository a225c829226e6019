package models

import "time"

// AttendanceStatus enumerates the recordable statuses.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
)

// Valid reports whether the status is a known value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// Attendance is one record per student per calendar day, enforced by a unique
// (student_id, date) constraint and written via upsert.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	TeacherID *string          `db:"teacher_id" json:"teacher_id,omitempty"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// AttendanceEntry is one item of a bulk save.
type AttendanceEntry struct {
	StudentID string           `json:"student_id" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required"`
}

// RosterStatus pairs a student with their status for a given day.
type RosterStatus struct {
	StudentID   string           `json:"student_id"`
	Name        string           `json:"name"`
	StudentCode *string          `json:"student_code,omitempty"`
	Status      AttendanceStatus `json:"status"`
}
