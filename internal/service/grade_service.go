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

type gradeRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.GradeWithSubject, error)
	MapForSubject(ctx context.Context, subjectID string, studentIDs []string) (map[string]models.Grade, error)
	BulkUpsert(ctx context.Context, subjectID string, entries []models.GradeEntry) error
}

type gradeRosterRepository interface {
	ListStudentsByClass(ctx context.Context, className string) ([]models.User, error)
}

type gradeSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// SaveMarksRequest records a batch of marks for one subject and class.
type SaveMarksRequest struct {
	SubjectID string              `json:"subject_id" validate:"required"`
	ClassName string              `json:"class_name" validate:"required"`
	Entries   []models.GradeEntry `json:"entries" validate:"required,min=1,dive"`
}

// GradeService provides mark entry use cases for teachers.
type GradeService struct {
	repo      gradeRepository
	roster    gradeRosterRepository
	subjects  gradeSubjectRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService instance.
func NewGradeService(repo gradeRepository, roster gradeRosterRepository, subjects gradeSubjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GradeService{repo: repo, roster: roster, subjects: subjects, cache: cache, validator: validate, logger: logger}
}

// Roster returns the class roster with each student's current marks in the
// subject. Students without a grade row come back zeroed.
func (s *GradeService) Roster(ctx context.Context, subjectID, className string) ([]models.MarkRow, error) {
	if _, err := s.subjects.FindByID(ctx, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	students, err := s.roster.ListStudentsByClass(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}

	ids := make([]string, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}
	grades, err := s.repo.MapForSubject(ctx, subjectID, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	rows := make([]models.MarkRow, 0, len(students))
	for _, st := range students {
		row := models.MarkRow{StudentID: st.ID, Name: st.Name, StudentCode: st.StudentCode}
		if g, ok := grades[st.ID]; ok {
			row.QuizMarks = g.QuizMarks
			row.MidMarks = g.MidMarks
			row.FinalMarks = g.FinalMarks
			row.TotalMarks = g.TotalMarks
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Save upserts a batch of marks. Totals are recomputed server side; marks
// must be non-negative and entries must belong to the class roster.
func (s *GradeService) Save(ctx context.Context, req SaveMarksRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid marks payload")
	}

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	for _, entry := range req.Entries {
		if entry.QuizMarks < 0 || entry.MidMarks < 0 || entry.FinalMarks < 0 {
			return appErrors.Clone(appErrors.ErrValidation, "marks must be non-negative")
		}
	}

	students, err := s.roster.ListStudentsByClass(ctx, req.ClassName)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	inClass := make(map[string]bool, len(students))
	for _, st := range students {
		inClass[st.ID] = true
	}
	for _, entry := range req.Entries {
		if !inClass[entry.StudentID] {
			return appErrors.Clone(appErrors.ErrValidation, "entry references a student outside the class")
		}
	}

	if err := s.repo.BulkUpsert(ctx, req.SubjectID, req.Entries); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save marks")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
			s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}

// ListByStudent returns a student's grades with subject names.
func (s *GradeService) ListByStudent(ctx context.Context, studentID string) ([]models.GradeWithSubject, error) {
	grades, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}
