package service

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupanel/edupanel-api/internal/models"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
)

type mockUserRepo struct {
	byID         map[string]*models.User
	byEmail      map[string]*models.User
	studentByRef *models.User
	parentOf     map[string]*models.User
	listed       []models.User
	listedTotal  int
	created      []*models.User
	updated      []*models.User
	deleted      []*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byID:     make(map[string]*models.User),
		byEmail:  make(map[string]*models.User),
		parentOf: make(map[string]*models.User),
	}
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) FindStudentByCodeOrID(ctx context.Context, ref string) (*models.User, error) {
	if m.studentByRef == nil {
		return nil, sql.ErrNoRows
	}
	return m.studentByRef, nil
}

func (m *mockUserRepo) FindParentOfStudent(ctx context.Context, studentID string) (*models.User, error) {
	parent, ok := m.parentOf[studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return parent, nil
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return m.listed, m.listedTotal, nil
}

func (m *mockUserRepo) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return m.listed, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.updated = append(m.updated, user)
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, user *models.User) error {
	m.deleted = append(m.deleted, user)
	return nil
}

func TestUserListClampsPagination(t *testing.T) {
	repo := newMockUserRepo()
	repo.listed = []models.User{{ID: "u1"}}
	repo.listedTotal = 41
	svc := NewUserService(repo, nil, nil, nil)

	_, pagination, err := svc.List(context.Background(), models.UserFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 41, pagination.TotalCount)
}

func TestUserCreateStudentGetsCode(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo, nil, nil, nil)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Name:         "Student",
		Email:        "student@school.io",
		Password:     "password",
		Role:         "STUDENT",
		StudentClass: "10A",
	})
	require.NoError(t, err)
	require.NotNil(t, user.StudentCode)
	assert.Regexp(t, regexp.MustCompile(`^STU-\d{4}$`), *user.StudentCode)
}

func TestUserCreateUnknownRole(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name:     "Nobody",
		Email:    "nobody@school.io",
		Password: "password",
		Role:     "JANITOR",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserDeleteUnknownUser(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), nil, nil, nil)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserLinkParentSuccess(t *testing.T) {
	repo := newMockUserRepo()
	repo.byID["p1"] = &models.User{ID: "p1", Role: models.RoleParent}
	repo.studentByRef = &models.User{ID: "s1", Role: models.RoleStudent}
	svc := NewUserService(repo, nil, nil, nil)

	parent, err := svc.LinkParent(context.Background(), LinkParentRequest{ParentID: "p1", StudentCode: "STU-0001"})
	require.NoError(t, err)
	require.NotNil(t, parent.ChildID)
	assert.Equal(t, "s1", *parent.ChildID)
	require.Len(t, repo.updated, 1)
}

func TestUserLinkParentRejectsNonParent(t *testing.T) {
	repo := newMockUserRepo()
	repo.byID["t1"] = &models.User{ID: "t1", Role: models.RoleTeacher}
	svc := NewUserService(repo, nil, nil, nil)

	_, err := svc.LinkParent(context.Background(), LinkParentRequest{ParentID: "t1", StudentCode: "STU-0001"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserLinkParentEnforcesOneParent(t *testing.T) {
	repo := newMockUserRepo()
	repo.byID["p2"] = &models.User{ID: "p2", Role: models.RoleParent}
	repo.studentByRef = &models.User{ID: "s1", Role: models.RoleStudent}
	repo.parentOf["s1"] = &models.User{ID: "p1", Role: models.RoleParent}
	svc := NewUserService(repo, nil, nil, nil)

	_, err := svc.LinkParent(context.Background(), LinkParentRequest{ParentID: "p2", StudentCode: "STU-0001"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
