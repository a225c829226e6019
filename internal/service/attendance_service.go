package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edupanel/edupanel-api/internal/models"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
)

type attendanceRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Attendance, error)
	MapForDate(ctx context.Context, studentIDs []string, date time.Time) (map[string]models.AttendanceStatus, error)
	BulkUpsert(ctx context.Context, markedBy string, date time.Time, entries []models.AttendanceEntry) error
}

type attendanceRosterRepository interface {
	ListStudentsByClass(ctx context.Context, className string) ([]models.User, error)
}

// SaveAttendanceRequest records one day of attendance for a class.
type SaveAttendanceRequest struct {
	ClassName string                   `json:"class_name" validate:"required"`
	Date      string                   `json:"date" validate:"required"`
	Entries   []models.AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceService provides attendance use cases for teachers.
type AttendanceService struct {
	repo      attendanceRepository
	roster    attendanceRosterRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(repo attendanceRepository, roster attendanceRosterRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, roster: roster, cache: cache, validator: validate, logger: logger}
}

// Roster returns the class roster with each student's status on the given
// date. Students without a record default to PRESENT so a fresh sheet starts
// fully marked.
func (s *AttendanceService) Roster(ctx context.Context, className string, date time.Time) ([]models.RosterStatus, error) {
	students, err := s.roster.ListStudentsByClass(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}

	ids := make([]string, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}
	statuses, err := s.repo.MapForDate(ctx, ids, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	roster := make([]models.RosterStatus, 0, len(students))
	for _, st := range students {
		status, ok := statuses[st.ID]
		if !ok {
			status = models.AttendancePresent
		}
		roster = append(roster, models.RosterStatus{
			StudentID:   st.ID,
			Name:        st.Name,
			StudentCode: st.StudentCode,
			Status:      status,
		})
	}
	return roster, nil
}

// Save upserts one day's statuses for a class. Entries must belong to the
// class roster; re-saving a day overwrites the previous statuses.
func (s *AttendanceService) Save(ctx context.Context, teacherID string, req SaveAttendanceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	for _, entry := range req.Entries {
		if !entry.Status.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
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

	if err := s.repo.BulkUpsert(ctx, teacherID, date, req.Entries); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
			s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}
