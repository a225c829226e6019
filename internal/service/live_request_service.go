package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edupanel/edupanel-api/internal/models"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
)

type liveRequestRepository interface {
	FindByID(ctx context.Context, id string) (*models.LiveRequestDetail, error)
	ListActive(ctx context.Context) ([]models.LiveRequestDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.LiveRequestDetail, error)
	Create(ctx context.Context, request *models.LiveRequest) error
	UpdateStatus(ctx context.Context, id string, status models.LiveRequestStatus) (bool, error)
}

// CreateLiveRequestRequest schedules a live class session.
type CreateLiveRequestRequest struct {
	SubjectID  string `json:"subject_id" validate:"required"`
	TeacherID  string `json:"teacher_id" validate:"required"`
	StartTime  string `json:"start_time" validate:"required"`
	RoomNumber string `json:"room_number" validate:"required"`
}

// UpdateLiveRequestRequest transitions a session's status.
type UpdateLiveRequestRequest struct {
	Status string `json:"status" validate:"required"`
}

// LiveRequestService provides live class session use cases.
type LiveRequestService struct {
	repo      liveRequestRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLiveRequestService constructs a LiveRequestService instance.
func NewLiveRequestService(repo liveRequestRepository, validate *validator.Validate, logger *zap.Logger) *LiveRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LiveRequestService{repo: repo, validator: validate, logger: logger}
}

// ListActive returns pending and started sessions newest first.
func (s *LiveRequestService) ListActive(ctx context.Context) ([]models.LiveRequestDetail, error) {
	requests, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list live requests")
	}
	return requests, nil
}

// ListByTeacher returns a teacher's sessions newest first.
func (s *LiveRequestService) ListByTeacher(ctx context.Context, teacherID string) ([]models.LiveRequestDetail, error) {
	requests, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher live requests")
	}
	return requests, nil
}

// Create schedules a session in PENDING state on behalf of an admin.
func (s *LiveRequestService) Create(ctx context.Context, adminID string, req CreateLiveRequestRequest) (*models.LiveRequestDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid live request payload")
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be RFC 3339")
	}

	request := &models.LiveRequest{
		SubjectID:  req.SubjectID,
		TeacherID:  req.TeacherID,
		AdminID:    adminID,
		StartTime:  startTime,
		RoomNumber: req.RoomNumber,
		Status:     models.LivePending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create live request")
	}

	detail, err := s.repo.FindByID(ctx, request.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load live request")
	}
	return detail, nil
}

// UpdateStatus transitions a session. Unknown statuses are rejected and a
// missing row yields not found.
func (s *LiveRequestService) UpdateStatus(ctx context.Context, id string, req UpdateLiveRequestRequest) (*models.LiveRequestDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	status := models.LiveRequestStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown live request status")
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update live request")
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "live request not found")
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "live request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load live request")
	}
	return detail, nil
}
