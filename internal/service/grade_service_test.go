package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupanel/edupanel-api/internal/models"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
)

type mockGradeRepo struct {
	byStudent    []models.GradeWithSubject
	bySubject    map[string]models.Grade
	savedSubject string
	savedBatch   []models.GradeEntry
}

func (m *mockGradeRepo) ListByStudent(ctx context.Context, studentID string) ([]models.GradeWithSubject, error) {
	return m.byStudent, nil
}

func (m *mockGradeRepo) MapForSubject(ctx context.Context, subjectID string, studentIDs []string) (map[string]models.Grade, error) {
	return m.bySubject, nil
}

func (m *mockGradeRepo) BulkUpsert(ctx context.Context, subjectID string, entries []models.GradeEntry) error {
	m.savedSubject = subjectID
	m.savedBatch = entries
	return nil
}

type mockSubjectLookup struct {
	subject *models.Subject
}

func (m *mockSubjectLookup) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if m.subject == nil {
		return nil, sql.ErrNoRows
	}
	return m.subject, nil
}

func TestGradeRosterZeroesMissingRows(t *testing.T) {
	repo := &mockGradeRepo{bySubject: map[string]models.Grade{
		"s1": {StudentID: "s1", QuizMarks: 8, MidMarks: 25, FinalMarks: 40, TotalMarks: 73},
	}}
	subjects := &mockSubjectLookup{subject: &models.Subject{ID: "sub1", Name: "Math"}}
	svc := NewGradeService(repo, &mockClassRoster{students: classOf10A()}, subjects, nil, nil, nil)

	rows, err := svc.Roster(context.Background(), "sub1", "10A")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 73.0, rows[0].TotalMarks)
	assert.Equal(t, 0.0, rows[1].QuizMarks)
	assert.Equal(t, 0.0, rows[1].TotalMarks)
}

func TestGradeRosterUnknownSubject(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, &mockClassRoster{students: classOf10A()}, &mockSubjectLookup{}, nil, nil, nil)

	_, err := svc.Roster(context.Background(), "missing", "10A")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGradeSaveRejectsNegativeMarks(t *testing.T) {
	subjects := &mockSubjectLookup{subject: &models.Subject{ID: "sub1", Name: "Math"}}
	svc := NewGradeService(&mockGradeRepo{}, &mockClassRoster{students: classOf10A()}, subjects, nil, nil, nil)

	err := svc.Save(context.Background(), SaveMarksRequest{
		SubjectID: "sub1",
		ClassName: "10A",
		Entries:   []models.GradeEntry{{StudentID: "s1", QuizMarks: -1}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradeSaveRejectsStudentOutsideClass(t *testing.T) {
	subjects := &mockSubjectLookup{subject: &models.Subject{ID: "sub1", Name: "Math"}}
	svc := NewGradeService(&mockGradeRepo{}, &mockClassRoster{students: classOf10A()}, subjects, nil, nil, nil)

	err := svc.Save(context.Background(), SaveMarksRequest{
		SubjectID: "sub1",
		ClassName: "10A",
		Entries:   []models.GradeEntry{{StudentID: "intruder", QuizMarks: 5}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradeSavePersistsBatch(t *testing.T) {
	repo := &mockGradeRepo{}
	subjects := &mockSubjectLookup{subject: &models.Subject{ID: "sub1", Name: "Math"}}
	svc := NewGradeService(repo, &mockClassRoster{students: classOf10A()}, subjects, nil, nil, nil)

	err := svc.Save(context.Background(), SaveMarksRequest{
		SubjectID: "sub1",
		ClassName: "10A",
		Entries: []models.GradeEntry{
			{StudentID: "s1", QuizMarks: 8, MidMarks: 25, FinalMarks: 40},
			{StudentID: "s2", QuizMarks: 6, MidMarks: 20, FinalMarks: 35},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "sub1", repo.savedSubject)
	assert.Len(t, repo.savedBatch, 2)
}
