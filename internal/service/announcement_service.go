package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edupanel/edupanel-api/internal/models"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
)

type announcementRepository interface {
	ListLatest(ctx context.Context, limit int) ([]models.AnnouncementDetail, error)
	ListForClass(ctx context.Context, className string) ([]models.AnnouncementDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.AnnouncementDetail, error)
	Create(ctx context.Context, announcement *models.Announcement) error
}

// CreateAnnouncementRequest publishes a notice. Admin notices are
// school-wide; teacher notices target a class and optionally a subject.
type CreateAnnouncementRequest struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	ClassName string `json:"class_name"`
	SubjectID string `json:"subject_id"`
}

// AnnouncementService provides notice use cases.
type AnnouncementService struct {
	repo      announcementRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs an AnnouncementService instance.
func NewAnnouncementService(repo announcementRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AnnouncementService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// ListLatest returns the most recent notices across all scopes.
func (s *AnnouncementService) ListLatest(ctx context.Context, limit int) ([]models.AnnouncementDetail, error) {
	notices, err := s.repo.ListLatest(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return notices, nil
}

// ListForClass returns notices visible to one class.
func (s *AnnouncementService) ListForClass(ctx context.Context, className string) ([]models.AnnouncementDetail, error) {
	notices, err := s.repo.ListForClass(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class announcements")
	}
	return notices, nil
}

// Create publishes a notice authored by the current user. Admins publish
// school-wide; teachers must scope to a class.
func (s *AnnouncementService) Create(ctx context.Context, author *models.JWTClaims, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}

	announcement := &models.Announcement{Title: req.Title, Content: req.Content}
	switch author.Role {
	case models.RoleAdmin:
		announcement.AdminID = &author.UserID
	case models.RoleTeacher:
		if req.ClassName == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class_name is required for teacher announcements")
		}
		announcement.TeacherID = &author.UserID
		announcement.ClassName = &req.ClassName
		if req.SubjectID != "" {
			announcement.SubjectID = &req.SubjectID
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins and teachers can publish announcements")
	}

	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
			s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
		}
	}
	return announcement, nil
}
