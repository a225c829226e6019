package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupanel/edupanel-api/internal/models"
)

const scheduleDetailQuery = `SELECT cs.id, cs.day_of_week, cs.start_time, cs.end_time, cs.room_number,
		cs.class_name, cs.subject_id, cs.teacher_id, cs.created_at,
		u.name AS teacher_name, s.name AS subject_name
	FROM class_schedules cs
	JOIN users u ON u.id = cs.teacher_id
	JOIN subjects s ON s.id = cs.subject_id`

// ScheduleRepository provides database access for the weekly class routine.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new instance of ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListAll returns every schedule slot with teacher and subject names.
func (r *ScheduleRepository) ListAll(ctx context.Context) ([]models.ScheduleDetail, error) {
	query := scheduleDetailQuery + ` ORDER BY cs.day_of_week ASC, cs.start_time ASC`
	var schedules []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// ListByTeacher returns a teacher's slots ordered by start time.
func (r *ScheduleRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleDetail, error) {
	query := scheduleDetailQuery + ` WHERE cs.teacher_id = $1 ORDER BY cs.start_time ASC`
	var schedules []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, teacherID); err != nil {
		return nil, fmt.Errorf("list schedules by teacher: %w", err)
	}
	return schedules, nil
}

// ListByClass returns a class's slots ordered by start time.
func (r *ScheduleRepository) ListByClass(ctx context.Context, className string) ([]models.ScheduleDetail, error) {
	query := scheduleDetailQuery + ` WHERE cs.class_name = $1 ORDER BY cs.start_time ASC`
	var schedules []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, className); err != nil {
		return nil, fmt.Errorf("list schedules by class: %w", err)
	}
	return schedules, nil
}

// Create inserts a schedule slot.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.ClassSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	const query = `INSERT INTO class_schedules (id, day_of_week, start_time, end_time, room_number, class_name, subject_id, teacher_id, created_at)
		VALUES (:id, :day_of_week, :start_time, :end_time, :room_number, :class_name, :subject_id, :teacher_id, NOW())`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}
