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

func TestAttendanceListByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "teacher_id", "date", "status", "created_at"}).
		AddRow("a1", "s1", "t1", now, string(models.AttendancePresent), now).
		AddRow("a2", "s1", "t1", now.AddDate(0, 0, -1), string(models.AttendanceAbsent), now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendances WHERE student_id = $1 ORDER BY date DESC")).
		WithArgs("s1").
		WillReturnRows(rows)

	records, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.AttendancePresent, records[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceMapForDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"student_id", "status"}).
		AddRow("s1", string(models.AttendanceLate))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, status FROM attendances WHERE date = $1 AND student_id IN ($2, $3)")).
		WithArgs(date, "s1", "s2").
		WillReturnRows(rows)

	statuses, err := repo.MapForDate(context.Background(), []string{"s1", "s2"}, date)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceLate, statuses["s1"])
	_, ok := statuses["s2"]
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceMapForDateEmptyRoster(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	statuses, err := repo.MapForDate(context.Background(), nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, statuses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceBulkUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendances").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO attendances").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.AttendanceEntry{
		{StudentID: "s1", Status: models.AttendancePresent},
		{StudentID: "s2", Status: models.AttendanceAbsent},
	}
	err := repo.BulkUpsert(context.Background(), "t1", time.Now(), entries)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
