package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edupanel/edupanel-api/internal/models"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
)

type subjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	FindByName(ctx context.Context, name string) (*models.Subject, error)
	ListWithTeachers(ctx context.Context) ([]models.SubjectWithTeachers, error)
	ListTeacherAssignments(ctx context.Context, teacherID string) ([]models.TeacherSubjectDetail, error)
	Create(ctx context.Context, subject *models.Subject, links []models.TeacherSubject) error
	AssignTeacher(ctx context.Context, link *models.TeacherSubject) error
	Delete(ctx context.Context, id string) error
}

// CreateSubjectRequest creates a subject, optionally assigning teachers to
// classes in the same call.
type CreateSubjectRequest struct {
	Name        string                     `json:"name" validate:"required"`
	Description string                     `json:"description"`
	Assignments []SubjectAssignmentRequest `json:"assignments" validate:"dive"`
}

// SubjectAssignmentRequest links one teacher to the subject for a class.
type SubjectAssignmentRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	ClassName string `json:"class_name" validate:"required"`
}

// SubjectService provides subject administration use cases.
type SubjectService struct {
	repo      subjectRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs a SubjectService instance.
func NewSubjectService(repo subjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubjectService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns all subjects with their assigned teachers.
func (s *SubjectService) List(ctx context.Context) ([]models.SubjectWithTeachers, error) {
	subjects, err := s.repo.ListWithTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Create inserts a subject with its teacher assignments.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject name")
	}

	subject := &models.Subject{Name: req.Name}
	if req.Description != "" {
		subject.Description = &req.Description
	}
	links := make([]models.TeacherSubject, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		className := a.ClassName
		links = append(links, models.TeacherSubject{TeacherID: a.TeacherID, ClassName: &className})
	}

	if err := s.repo.Create(ctx, subject, links); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}

	s.invalidateDashboards(ctx)
	return subject, nil
}

// AssignTeacher links a teacher to an existing subject for a class.
func (s *SubjectService) AssignTeacher(ctx context.Context, subjectID string, req SubjectAssignmentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if _, err := s.repo.FindByID(ctx, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	className := req.ClassName
	link := &models.TeacherSubject{TeacherID: req.TeacherID, SubjectID: subjectID, ClassName: &className}
	if err := s.repo.AssignTeacher(ctx, link); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign teacher")
	}

	s.invalidateDashboards(ctx)
	return nil
}

// ListTeacherAssignments returns a teacher's subject/class load.
func (s *SubjectService) ListTeacherAssignments(ctx context.Context, teacherID string) ([]models.TeacherSubjectDetail, error) {
	assignments, err := s.repo.ListTeacherAssignments(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Delete removes a subject and all rows referencing it.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}

	s.invalidateDashboards(ctx)
	return nil
}

func (s *SubjectService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
