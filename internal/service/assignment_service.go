package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edupanel/edupanel-api/internal/models"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
)

type assignmentRepository interface {
	ListByClass(ctx context.Context, className string) ([]models.AssignmentDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.AssignmentDetail, error)
	Create(ctx context.Context, assignment *models.Assignment) error
}

// CreateAssignmentRequest posts homework for a class.
type CreateAssignmentRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"due_date" validate:"required"`
	ClassName   string `json:"class_name" validate:"required"`
	SubjectID   string `json:"subject_id" validate:"required"`
}

// AssignmentService provides homework use cases.
type AssignmentService struct {
	repo      assignmentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(repo assignmentRepository, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{repo: repo, validator: validate, logger: logger}
}

// ListByClass returns a class's assignments newest first.
func (s *AssignmentService) ListByClass(ctx context.Context, className string) ([]models.AssignmentDetail, error) {
	assignments, err := s.repo.ListByClass(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// ListByTeacher returns the teacher's posted assignments.
func (s *AssignmentService) ListByTeacher(ctx context.Context, teacherID string) ([]models.AssignmentDetail, error) {
	assignments, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher assignments")
	}
	return assignments, nil
}

// Create posts homework authored by the teacher.
func (s *AssignmentService) Create(ctx context.Context, teacherID string, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "due_date must be YYYY-MM-DD")
	}

	assignment := &models.Assignment{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		ClassName:   req.ClassName,
		SubjectID:   req.SubjectID,
		TeacherID:   teacherID,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}
