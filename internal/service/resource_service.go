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

type resourceRepository interface {
	ListByClass(ctx context.Context, className string) ([]models.ResourceDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ResourceDetail, error)
	Create(ctx context.Context, resource *models.Resource) error
}

type resourceSubjectRepository interface {
	FindByName(ctx context.Context, name string) (*models.Subject, error)
}

// CreateResourceRequest shares a study file with a class. The subject is
// referenced by name and must already exist.
type CreateResourceRequest struct {
	Title       string `json:"title" validate:"required"`
	FileURL     string `json:"file_url" validate:"required,url"`
	ClassName   string `json:"class_name" validate:"required"`
	SubjectName string `json:"subject_name" validate:"required"`
}

// ResourceService provides study material use cases.
type ResourceService struct {
	repo      resourceRepository
	subjects  resourceSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResourceService constructs a ResourceService instance.
func NewResourceService(repo resourceRepository, subjects resourceSubjectRepository, validate *validator.Validate, logger *zap.Logger) *ResourceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ResourceService{repo: repo, subjects: subjects, validator: validate, logger: logger}
}

// ListByClass returns a class's resources newest first.
func (s *ResourceService) ListByClass(ctx context.Context, className string) ([]models.ResourceDetail, error) {
	resources, err := s.repo.ListByClass(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
	}
	return resources, nil
}

// ListByTeacher returns the teacher's shared resources.
func (s *ResourceService) ListByTeacher(ctx context.Context, teacherID string) ([]models.ResourceDetail, error) {
	resources, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher resources")
	}
	return resources, nil
}

// Create shares a resource. The named subject must exist.
func (s *ResourceService) Create(ctx context.Context, teacherID string, req CreateResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}

	subject, err := s.subjects.FindByName(ctx, req.SubjectName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	resource := &models.Resource{
		Title:     req.Title,
		FileURL:   req.FileURL,
		ClassName: req.ClassName,
		SubjectID: subject.ID,
		TeacherID: teacherID,
	}
	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create resource")
	}
	return resource, nil
}
