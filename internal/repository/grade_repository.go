package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupanel/edupanel-api/internal/models"
)

// GradeRepository provides database access for exam marks. One row exists per
// (student_id, subject_id); bulk saves upsert against that constraint.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new instance of GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// ListByStudent returns all of a student's grades with subject names.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.GradeWithSubject, error) {
	const query = `SELECT g.id, g.student_id, g.subject_id, g.quiz_marks, g.mid_marks, g.final_marks, g.total_marks,
			g.updated_at, s.name AS subject_name
		FROM grades g
		JOIN subjects s ON s.id = g.subject_id
		WHERE g.student_id = $1
		ORDER BY s.name ASC`
	var grades []models.GradeWithSubject
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list grades by student: %w", err)
	}
	return grades, nil
}

// MapForSubject returns grades keyed by student id for the given students in
// one subject. Students without a grade row are absent from the map.
func (r *GradeRepository) MapForSubject(ctx context.Context, subjectID string, studentIDs []string) (map[string]models.Grade, error) {
	if len(studentIDs) == 0 {
		return map[string]models.Grade{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, student_id, subject_id, quiz_marks, mid_marks, final_marks, total_marks, updated_at
		FROM grades WHERE subject_id = ? AND student_id IN (?)`, subjectID, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("build grade subject query: %w", err)
	}
	query = r.db.Rebind(query)

	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades for subject: %w", err)
	}

	byStudent := make(map[string]models.Grade, len(grades))
	for _, g := range grades {
		byStudent[g.StudentID] = g
	}
	return byStudent, nil
}

// BulkUpsert saves a batch of marks for one subject in a single transaction.
// total_marks is recomputed from the three components on every write.
func (r *GradeRepository) BulkUpsert(ctx context.Context, subjectID string, entries []models.GradeEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grade upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO grades (id, student_id, subject_id, quiz_marks, mid_marks, final_marks, total_marks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (student_id, subject_id)
		DO UPDATE SET quiz_marks = EXCLUDED.quiz_marks, mid_marks = EXCLUDED.mid_marks,
			final_marks = EXCLUDED.final_marks, total_marks = EXCLUDED.total_marks, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for _, entry := range entries {
		total := entry.QuizMarks + entry.MidMarks + entry.FinalMarks
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), entry.StudentID, subjectID,
			entry.QuizMarks, entry.MidMarks, entry.FinalMarks, total, now); err != nil {
			return fmt.Errorf("upsert grade for %s: %w", entry.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade upsert: %w", err)
	}
	return nil
}
