package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupanel/edupanel-api/internal/models"
)

func scheduleRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "day_of_week", "start_time", "end_time", "room_number", "class_name", "subject_id", "teacher_id", "created_at", "teacher_name", "subject_name"}).
		AddRow("sch1", "MONDAY", "09:00", "10:30", "R12", "10A", "sub1", "t1", now, "Teacher One", "Math")
}

func TestScheduleListAll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY cs.day_of_week ASC, cs.start_time ASC")).
		WillReturnRows(scheduleRows(time.Now()))

	schedules, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "Math", schedules[0].SubjectName)
	assert.Equal(t, "09:00", schedules[0].StartTime.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleListByClass(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE cs.class_name = $1 ORDER BY cs.start_time ASC")).
		WithArgs("10A").
		WillReturnRows(scheduleRows(time.Now()))

	schedules, err := repo.ListByClass(context.Background(), "10A")
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "10A", schedules[0].ClassName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("INSERT INTO class_schedules").WillReturnResult(sqlmock.NewResult(1, 1))

	schedule := &models.ClassSchedule{
		TeacherID:  "t1",
		SubjectID:  "sub1",
		ClassName:  "10A",
		DayOfWeek:  "MONDAY",
		StartTime:  models.TimeOfDay("09:00"),
		EndTime:    models.TimeOfDay("10:30"),
		RoomNumber: "R12",
	}
	err := repo.Create(context.Background(), schedule)
	require.NoError(t, err)
	assert.NotEmpty(t, schedule.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
