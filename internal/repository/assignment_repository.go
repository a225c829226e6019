package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupanel/edupanel-api/internal/models"
)

// AssignmentRepository provides database access for homework assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByClass returns a class's assignments with subject names, newest first.
func (r *AssignmentRepository) ListByClass(ctx context.Context, className string) ([]models.AssignmentDetail, error) {
	const query = `SELECT a.id, a.title, a.description, a.due_date, a.class_name, a.subject_id, a.teacher_id, a.created_at,
			s.name AS subject_name
		FROM assignments a
		JOIN subjects s ON s.id = a.subject_id
		WHERE a.class_name = $1
		ORDER BY a.created_at DESC`
	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, className); err != nil {
		return nil, fmt.Errorf("list assignments by class: %w", err)
	}
	return assignments, nil
}

// ListByTeacher returns a teacher's assignments, newest first.
func (r *AssignmentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.AssignmentDetail, error) {
	const query = `SELECT a.id, a.title, a.description, a.due_date, a.class_name, a.subject_id, a.teacher_id, a.created_at,
			s.name AS subject_name
		FROM assignments a
		JOIN subjects s ON s.id = a.subject_id
		WHERE a.teacher_id = $1
		ORDER BY a.created_at DESC`
	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, teacherID); err != nil {
		return nil, fmt.Errorf("list assignments by teacher: %w", err)
	}
	return assignments, nil
}

// Create inserts an assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (id, title, description, due_date, class_name, subject_id, teacher_id, created_at)
		VALUES (:id, :title, :description, :due_date, :class_name, :subject_id, :teacher_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}
