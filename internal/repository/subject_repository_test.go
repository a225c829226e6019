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

func TestSubjectFindByName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, created_at FROM subjects WHERE name = $1 LIMIT 1")).
		WithArgs("Math").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}).
			AddRow("sub1", "Math", nil, now))

	subject, err := repo.FindByName(context.Background(), "Math")
	require.NoError(t, err)
	assert.Equal(t, "sub1", subject.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectListWithTeachers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, created_at FROM subjects ORDER BY name ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}).
			AddRow("sub1", "Biology", nil, now).
			AddRow("sub2", "Math", nil, now))
	mock.ExpectQuery("FROM teacher_subjects ts").
		WillReturnRows(sqlmock.NewRows([]string{"subject_id", "teacher_id", "teacher_name"}).
			AddRow("sub2", "t1", "Teacher One"))

	subjects, err := repo.ListWithTeachers(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Empty(t, subjects[0].Teachers)
	assert.NotNil(t, subjects[0].Teachers)
	require.Len(t, subjects[1].Teachers, 1)
	assert.Equal(t, "Teacher One", subjects[1].Teachers[0].TeacherName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectCreateWithLinks(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO subjects").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO teacher_subjects").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	className := "10A"
	subject := &models.Subject{Name: "Math"}
	links := []models.TeacherSubject{{TeacherID: "t1", ClassName: &className}}
	err := repo.Create(context.Background(), subject, links)
	require.NoError(t, err)
	assert.NotEmpty(t, subject.ID)
	assert.Equal(t, subject.ID, links[0].SubjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectDeleteCascades(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM live_requests").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM teacher_subjects").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM class_schedules").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM assignments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM subjects").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "sub1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
