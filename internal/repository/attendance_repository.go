package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupanel/edupanel-api/internal/models"
)

// AttendanceRepository provides database access for attendance records. One
// row exists per (student_id, date); bulk saves rely on that unique
// constraint to upsert.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListByStudent returns a student's attendance history newest first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, teacher_id, date, status, created_at
		FROM attendances WHERE student_id = $1 ORDER BY date DESC`
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list attendance by student: %w", err)
	}
	return records, nil
}

// MapForDate returns status keyed by student id for the given students on one
// date. Students with no record that day are absent from the map.
func (r *AttendanceRepository) MapForDate(ctx context.Context, studentIDs []string, date time.Time) (map[string]models.AttendanceStatus, error) {
	if len(studentIDs) == 0 {
		return map[string]models.AttendanceStatus{}, nil
	}
	query, args, err := sqlx.In(`SELECT student_id, status FROM attendances WHERE date = ? AND student_id IN (?)`, date, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("build attendance date query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []struct {
		StudentID string                  `db:"student_id"`
		Status    models.AttendanceStatus `db:"status"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance for date: %w", err)
	}

	statuses := make(map[string]models.AttendanceStatus, len(rows))
	for _, row := range rows {
		statuses[row.StudentID] = row.Status
	}
	return statuses, nil
}

// BulkUpsert records one day's attendance for a set of students in a single
// transaction. Re-submitting the same day overwrites the earlier statuses.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, markedBy string, date time.Time, entries []models.AttendanceEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO attendances (id, student_id, date, status, teacher_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, date)
		DO UPDATE SET status = EXCLUDED.status, teacher_id = EXCLUDED.teacher_id`
	now := time.Now().UTC()
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), entry.StudentID, date, entry.Status, markedBy, now); err != nil {
			return fmt.Errorf("upsert attendance for %s: %w", entry.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance upsert: %w", err)
	}
	return nil
}
