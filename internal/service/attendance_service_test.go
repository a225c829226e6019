package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupanel/edupanel-api/internal/models"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
)

type mockAttendanceRepo struct {
	byStudent  []models.Attendance
	statuses   map[string]models.AttendanceStatus
	savedBy    string
	savedDate  time.Time
	savedBatch []models.AttendanceEntry
}

func (m *mockAttendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Attendance, error) {
	return m.byStudent, nil
}

func (m *mockAttendanceRepo) MapForDate(ctx context.Context, studentIDs []string, date time.Time) (map[string]models.AttendanceStatus, error) {
	return m.statuses, nil
}

func (m *mockAttendanceRepo) BulkUpsert(ctx context.Context, markedBy string, date time.Time, entries []models.AttendanceEntry) error {
	m.savedBy = markedBy
	m.savedDate = date
	m.savedBatch = entries
	return nil
}

type mockClassRoster struct {
	students []models.User
}

func (m *mockClassRoster) ListStudentsByClass(ctx context.Context, className string) ([]models.User, error) {
	return m.students, nil
}

func classOf10A() []models.User {
	return []models.User{
		{ID: "s1", Name: "Alice", Role: models.RoleStudent},
		{ID: "s2", Name: "Bob", Role: models.RoleStudent},
	}
}

func TestAttendanceRosterDefaultsToPresent(t *testing.T) {
	repo := &mockAttendanceRepo{statuses: map[string]models.AttendanceStatus{"s2": models.AttendanceAbsent}}
	svc := NewAttendanceService(repo, &mockClassRoster{students: classOf10A()}, nil, nil, nil)

	roster, err := svc.Roster(context.Background(), "10A", time.Now())
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, models.AttendancePresent, roster[0].Status)
	assert.Equal(t, models.AttendanceAbsent, roster[1].Status)
}

func TestAttendanceSaveRejectsBadDate(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockClassRoster{students: classOf10A()}, nil, nil, nil)

	err := svc.Save(context.Background(), "t1", SaveAttendanceRequest{
		ClassName: "10A",
		Date:      "27-08-2026",
		Entries:   []models.AttendanceEntry{{StudentID: "s1", Status: models.AttendancePresent}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceSaveRejectsUnknownStatus(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockClassRoster{students: classOf10A()}, nil, nil, nil)

	err := svc.Save(context.Background(), "t1", SaveAttendanceRequest{
		ClassName: "10A",
		Date:      "2026-08-27",
		Entries:   []models.AttendanceEntry{{StudentID: "s1", Status: "SLEEPING"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceSaveRejectsStudentOutsideClass(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockClassRoster{students: classOf10A()}, nil, nil, nil)

	err := svc.Save(context.Background(), "t1", SaveAttendanceRequest{
		ClassName: "10A",
		Date:      "2026-08-27",
		Entries:   []models.AttendanceEntry{{StudentID: "intruder", Status: models.AttendanceLate}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceSavePersistsBatch(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockClassRoster{students: classOf10A()}, nil, nil, nil)

	err := svc.Save(context.Background(), "t1", SaveAttendanceRequest{
		ClassName: "10A",
		Date:      "2026-08-27",
		Entries: []models.AttendanceEntry{
			{StudentID: "s1", Status: models.AttendancePresent},
			{StudentID: "s2", Status: models.AttendanceLate},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", repo.savedBy)
	assert.Equal(t, "2026-08-27", repo.savedDate.Format("2006-01-02"))
	assert.Len(t, repo.savedBatch, 2)
}
