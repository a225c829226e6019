package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupanel/edupanel-api/internal/models"
)

const liveRequestDetailQuery = `SELECT lr.id, lr.subject_id, lr.teacher_id, lr.admin_id, lr.start_time,
		lr.room_number, lr.status, lr.created_at,
		s.name AS subject_name, t.name AS teacher_name, adm.name AS admin_name
	FROM live_requests lr
	JOIN subjects s ON s.id = lr.subject_id
	JOIN users t ON t.id = lr.teacher_id
	LEFT JOIN users adm ON adm.id = lr.admin_id`

// LiveRequestRepository provides database access for live class requests.
type LiveRequestRepository struct {
	db *sqlx.DB
}

// NewLiveRequestRepository creates a new instance of LiveRequestRepository.
func NewLiveRequestRepository(db *sqlx.DB) *LiveRequestRepository {
	return &LiveRequestRepository{db: db}
}

// FindByID returns a live request with joined names.
func (r *LiveRequestRepository) FindByID(ctx context.Context, id string) (*models.LiveRequestDetail, error) {
	query := liveRequestDetailQuery + ` WHERE lr.id = $1 LIMIT 1`
	var request models.LiveRequestDetail
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find live request: %w", err)
	}
	return &request, nil
}

// ListActive returns pending and started requests, newest first.
func (r *LiveRequestRepository) ListActive(ctx context.Context) ([]models.LiveRequestDetail, error) {
	query := liveRequestDetailQuery + ` WHERE lr.status IN ('PENDING', 'STARTED') ORDER BY lr.created_at DESC`
	var requests []models.LiveRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list active live requests: %w", err)
	}
	return requests, nil
}

// ListByTeacher returns a teacher's requests, newest first.
func (r *LiveRequestRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.LiveRequestDetail, error) {
	query := liveRequestDetailQuery + ` WHERE lr.teacher_id = $1 ORDER BY lr.created_at DESC`
	var requests []models.LiveRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query, teacherID); err != nil {
		return nil, fmt.Errorf("list live requests by teacher: %w", err)
	}
	return requests, nil
}

// Create inserts a live request in PENDING state.
func (r *LiveRequestRepository) Create(ctx context.Context, request *models.LiveRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO live_requests (id, subject_id, teacher_id, admin_id, start_time, room_number, status, created_at)
		VALUES (:id, :subject_id, :teacher_id, :admin_id, :start_time, :room_number, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create live request: %w", err)
	}
	return nil
}

// UpdateStatus transitions a request and reports whether a row matched.
func (r *LiveRequestRepository) UpdateStatus(ctx context.Context, id string, status models.LiveRequestStatus) (bool, error) {
	const query = `UPDATE live_requests SET status = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return false, fmt.Errorf("update live request status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update live request status: %w", err)
	}
	return affected > 0, nil
}
