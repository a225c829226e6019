package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupanel/edupanel-api/internal/models"
)

// ResourceRepository provides database access for study materials.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository creates a new instance of ResourceRepository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// ListByClass returns a class's resources with subject names, newest first.
func (r *ResourceRepository) ListByClass(ctx context.Context, className string) ([]models.ResourceDetail, error) {
	const query = `SELECT r.id, r.title, r.file_url, r.class_name, r.subject_id, r.teacher_id, r.created_at,
			s.name AS subject_name
		FROM resources r
		JOIN subjects s ON s.id = r.subject_id
		WHERE r.class_name = $1
		ORDER BY r.created_at DESC`
	var resources []models.ResourceDetail
	if err := r.db.SelectContext(ctx, &resources, query, className); err != nil {
		return nil, fmt.Errorf("list resources by class: %w", err)
	}
	return resources, nil
}

// ListByTeacher returns a teacher's shared resources, newest first.
func (r *ResourceRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ResourceDetail, error) {
	const query = `SELECT r.id, r.title, r.file_url, r.class_name, r.subject_id, r.teacher_id, r.created_at,
			s.name AS subject_name
		FROM resources r
		JOIN subjects s ON s.id = r.subject_id
		WHERE r.teacher_id = $1
		ORDER BY r.created_at DESC`
	var resources []models.ResourceDetail
	if err := r.db.SelectContext(ctx, &resources, query, teacherID); err != nil {
		return nil, fmt.Errorf("list resources by teacher: %w", err)
	}
	return resources, nil
}

// Create inserts a resource.
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}
	if resource.CreatedAt.IsZero() {
		resource.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO resources (id, title, file_url, class_name, subject_id, teacher_id, created_at)
		VALUES (:id, :title, :file_url, :class_name, :subject_id, :teacher_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, resource); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}
