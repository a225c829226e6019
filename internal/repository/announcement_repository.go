package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupanel/edupanel-api/internal/models"
)

const announcementDetailQuery = `SELECT a.id, a.title, a.content, a.admin_id, a.teacher_id, a.class_name, a.subject_id, a.created_at,
		COALESCE(adm.name, t.name) AS author_name, s.name AS subject_name
	FROM announcements a
	LEFT JOIN users adm ON adm.id = a.admin_id
	LEFT JOIN users t ON t.id = a.teacher_id
	LEFT JOIN subjects s ON s.id = a.subject_id`

// AnnouncementRepository provides database access for notices. A notice is
// either school-wide (admin_id set, class_name NULL) or class-scoped
// (teacher_id, class_name and usually subject_id set).
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates a new instance of AnnouncementRepository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// ListLatest returns the most recent notices across all scopes.
func (r *AnnouncementRepository) ListLatest(ctx context.Context, limit int) ([]models.AnnouncementDetail, error) {
	if limit <= 0 {
		limit = 20
	}
	query := announcementDetailQuery + ` ORDER BY a.created_at DESC LIMIT $1`
	var notices []models.AnnouncementDetail
	if err := r.db.SelectContext(ctx, &notices, query, limit); err != nil {
		return nil, fmt.Errorf("list latest announcements: %w", err)
	}
	return notices, nil
}

// ListForClass returns notices visible to a class: class-scoped ones matching
// the class plus every school-wide one.
func (r *AnnouncementRepository) ListForClass(ctx context.Context, className string) ([]models.AnnouncementDetail, error) {
	query := announcementDetailQuery + `
	WHERE a.class_name = $1 OR a.class_name IS NULL OR a.admin_id IS NOT NULL
	ORDER BY a.created_at DESC`
	var notices []models.AnnouncementDetail
	if err := r.db.SelectContext(ctx, &notices, query, className); err != nil {
		return nil, fmt.Errorf("list announcements for class: %w", err)
	}
	return notices, nil
}

// ListByTeacher returns the notices a teacher authored, newest first.
func (r *AnnouncementRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.AnnouncementDetail, error) {
	query := announcementDetailQuery + ` WHERE a.teacher_id = $1 ORDER BY a.created_at DESC`
	var notices []models.AnnouncementDetail
	if err := r.db.SelectContext(ctx, &notices, query, teacherID); err != nil {
		return nil, fmt.Errorf("list announcements by teacher: %w", err)
	}
	return notices, nil
}

// CountRecentForClass counts class-visible notices created at or after since.
func (r *AnnouncementRepository) CountRecentForClass(ctx context.Context, className string, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM announcements a
		WHERE (a.class_name = $1 OR a.class_name IS NULL OR a.admin_id IS NOT NULL) AND a.created_at >= $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, className, since); err != nil {
		return 0, fmt.Errorf("count recent announcements: %w", err)
	}
	return count, nil
}

// Create inserts a notice.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO announcements (id, title, content, admin_id, teacher_id, class_name, subject_id, created_at)
		VALUES (:id, :title, :content, :admin_id, :teacher_id, :class_name, :subject_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}
