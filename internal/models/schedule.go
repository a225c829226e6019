package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimeOfDay is a validated HH:MM wall-clock value. Schedules store times as
// this type instead of free-form strings so malformed values are rejected at
// the boundary.
type TimeOfDay string

// ParseTimeOfDay validates raw input as a 24h HH:MM value.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	if _, err := time.Parse("15:04", raw); err != nil {
		return "", fmt.Errorf("invalid time of day %q, expected HH:MM", raw)
	}
	return TimeOfDay(raw), nil
}

// String returns the HH:MM representation.
func (t TimeOfDay) String() string { return string(t) }

// Before reports whether t is earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool { return string(t) < string(other) }

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) { return string(t), nil }

// Scan implements sql.Scanner.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*t = TimeOfDay(v)
	case []byte:
		*t = TimeOfDay(v)
	case time.Time:
		*t = TimeOfDay(v.Format("15:04"))
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
	return nil
}

// ClassSchedule is one routine slot for a class.
type ClassSchedule struct {
	ID         string    `db:"id" json:"id"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	ClassName  string    `db:"class_name" json:"class_name"`
	DayOfWeek  string    `db:"day_of_week" json:"day_of_week"`
	StartTime  TimeOfDay `db:"start_time" json:"start_time"`
	EndTime    TimeOfDay `db:"end_time" json:"end_time"`
	RoomNumber string    `db:"room_number" json:"room_number"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ScheduleDetail joins a schedule slot with teacher and subject names.
type ScheduleDetail struct {
	ClassSchedule
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}
