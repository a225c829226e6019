package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupanel/edupanel-api/internal/models"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
)

type mockDashUserRepo struct {
	byID    map[string]*models.User
	all     []models.User
	byRole  map[models.UserRole][]models.User
	childOf map[string]*models.User
}

func (m *mockDashUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockDashUserRepo) FindChildOfParent(ctx context.Context, parent *models.User) (*models.User, error) {
	child, ok := m.childOf[parent.ID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return child, nil
}

func (m *mockDashUserRepo) ListAll(ctx context.Context) ([]models.User, error) {
	return m.all, nil
}

func (m *mockDashUserRepo) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return m.byRole[role], nil
}

type mockDashSubjectRepo struct {
	subjects    []models.SubjectWithTeachers
	assignments []models.TeacherSubjectDetail
}

func (m *mockDashSubjectRepo) ListWithTeachers(ctx context.Context) ([]models.SubjectWithTeachers, error) {
	return m.subjects, nil
}

func (m *mockDashSubjectRepo) ListTeacherAssignments(ctx context.Context, teacherID string) ([]models.TeacherSubjectDetail, error) {
	return m.assignments, nil
}

type mockDashScheduleRepo struct {
	all       []models.ScheduleDetail
	byTeacher []models.ScheduleDetail
	byClass   []models.ScheduleDetail
}

func (m *mockDashScheduleRepo) ListAll(ctx context.Context) ([]models.ScheduleDetail, error) {
	return m.all, nil
}

func (m *mockDashScheduleRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleDetail, error) {
	return m.byTeacher, nil
}

func (m *mockDashScheduleRepo) ListByClass(ctx context.Context, className string) ([]models.ScheduleDetail, error) {
	return m.byClass, nil
}

type mockDashAnnouncementRepo struct {
	latest       []models.AnnouncementDetail
	forClass     []models.AnnouncementDetail
	recentCount  int
	latestErr    error
	lastLimit    int
	forClassName string
}

func (m *mockDashAnnouncementRepo) ListLatest(ctx context.Context, limit int) ([]models.AnnouncementDetail, error) {
	m.lastLimit = limit
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	return m.latest, nil
}

func (m *mockDashAnnouncementRepo) ListForClass(ctx context.Context, className string) ([]models.AnnouncementDetail, error) {
	m.forClassName = className
	return m.forClass, nil
}

func (m *mockDashAnnouncementRepo) CountRecentForClass(ctx context.Context, className string, since time.Time) (int, error) {
	return m.recentCount, nil
}

type mockDashAttendanceRepo struct {
	records []models.Attendance
}

func (m *mockDashAttendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Attendance, error) {
	return m.records, nil
}

type mockDashGradeRepo struct {
	grades []models.GradeWithSubject
}

func (m *mockDashGradeRepo) ListByStudent(ctx context.Context, studentID string) ([]models.GradeWithSubject, error) {
	return m.grades, nil
}

type mockDashAssignmentRepo struct {
	assignments []models.AssignmentDetail
}

func (m *mockDashAssignmentRepo) ListByClass(ctx context.Context, className string) ([]models.AssignmentDetail, error) {
	return m.assignments, nil
}

type mockDashResourceRepo struct {
	resources []models.ResourceDetail
}

func (m *mockDashResourceRepo) ListByClass(ctx context.Context, className string) ([]models.ResourceDetail, error) {
	return m.resources, nil
}

type mockDashMessageRepo struct {
	unread int
}

func (m *mockDashMessageRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	return m.unread, nil
}

func strPtr(s string) *string { return &s }

func TestDashboardAdminDerivesParentChildLinks(t *testing.T) {
	users := []models.User{
		{ID: "a1", Name: "Admin", Role: models.RoleAdmin},
		{ID: "t1", Name: "Teacher", Role: models.RoleTeacher},
		{ID: "s1", Name: "Student One", Role: models.RoleStudent},
		{ID: "p1", Name: "Parent One", Role: models.RoleParent, ChildID: strPtr("s1")},
	}
	svc := NewDashboardService(DashboardServiceParams{
		Users:         &mockDashUserRepo{all: users, byRole: map[models.UserRole][]models.User{}},
		Subjects:      &mockDashSubjectRepo{},
		Schedules:     &mockDashScheduleRepo{},
		Announcements: &mockDashAnnouncementRepo{},
	})

	summary, cached, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, 4, summary.Stats.TotalUsers)
	assert.Equal(t, 1, summary.Stats.Students)
	assert.Equal(t, 1, summary.Stats.Teachers)
	assert.Equal(t, 1, summary.Stats.Parents)
	assert.Equal(t, 1, summary.Stats.Admins)

	var parentID, childName *string
	for i := range summary.Users {
		switch summary.Users[i].ID {
		case "s1":
			parentID = summary.Users[i].ParentID
		case "p1":
			childName = summary.Users[i].ChildName
		}
	}
	require.NotNil(t, parentID)
	assert.Equal(t, "p1", *parentID)
	require.NotNil(t, childName)
	assert.Equal(t, "Student One", *childName)
}

func TestDashboardAdminRequestsFiveLatestNotices(t *testing.T) {
	announcements := &mockDashAnnouncementRepo{}
	svc := NewDashboardService(DashboardServiceParams{
		Users:         &mockDashUserRepo{byRole: map[models.UserRole][]models.User{}},
		Subjects:      &mockDashSubjectRepo{},
		Schedules:     &mockDashScheduleRepo{},
		Announcements: announcements,
	})

	_, _, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, announcements.lastLimit)
}

func TestDashboardAdminSurvivesNoticeFailure(t *testing.T) {
	svc := NewDashboardService(DashboardServiceParams{
		Users:         &mockDashUserRepo{byRole: map[models.UserRole][]models.User{}},
		Subjects:      &mockDashSubjectRepo{},
		Schedules:     &mockDashScheduleRepo{},
		Announcements: &mockDashAnnouncementRepo{latestErr: sql.ErrConnDone},
	})

	summary, _, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Announcements)
}

func TestDashboardTeacherCountsDistinctClassesAndSubjects(t *testing.T) {
	teacher := &models.User{ID: "t1", Name: "Teacher", Role: models.RoleTeacher}
	assignments := []models.TeacherSubjectDetail{
		{ID: "l1", TeacherID: "t1", SubjectID: "sub1", ClassName: strPtr("10A")},
		{ID: "l2", TeacherID: "t1", SubjectID: "sub1", ClassName: strPtr("10B")},
		{ID: "l3", TeacherID: "t1", SubjectID: "sub2", ClassName: strPtr("10A")},
	}
	svc := NewDashboardService(DashboardServiceParams{
		Users:         &mockDashUserRepo{byID: map[string]*models.User{"t1": teacher}},
		Subjects:      &mockDashSubjectRepo{assignments: assignments},
		Schedules:     &mockDashScheduleRepo{},
		Announcements: &mockDashAnnouncementRepo{},
	})

	summary, _, err := svc.Teacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Stats.TotalClasses)
	assert.Equal(t, 2, summary.Stats.TotalSubjects)
}

func TestDashboardTeacherRoleMismatch(t *testing.T) {
	student := &models.User{ID: "s1", Role: models.RoleStudent}
	svc := NewDashboardService(DashboardServiceParams{
		Users:         &mockDashUserRepo{byID: map[string]*models.User{"s1": student}},
		Subjects:      &mockDashSubjectRepo{},
		Schedules:     &mockDashScheduleRepo{},
		Announcements: &mockDashAnnouncementRepo{},
	})

	_, _, err := svc.Teacher(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestDashboardStudentAttendancePercentage(t *testing.T) {
	student := &models.User{ID: "s1", Name: "Student", Role: models.RoleStudent, StudentClass: strPtr("10A")}
	records := []models.Attendance{
		{StudentID: "s1", Status: models.AttendancePresent, Date: time.Now()},
		{StudentID: "s1", Status: models.AttendancePresent, Date: time.Now()},
		{StudentID: "s1", Status: models.AttendanceAbsent, Date: time.Now()},
	}
	svc := NewDashboardService(DashboardServiceParams{
		Users:         &mockDashUserRepo{byID: map[string]*models.User{"s1": student}, byRole: map[models.UserRole][]models.User{}},
		Subjects:      &mockDashSubjectRepo{},
		Schedules:     &mockDashScheduleRepo{},
		Announcements: &mockDashAnnouncementRepo{},
		Attendance:    &mockDashAttendanceRepo{records: records},
		Grades:        &mockDashGradeRepo{},
		Assignments:   &mockDashAssignmentRepo{},
		Resources:     &mockDashResourceRepo{},
	})

	summary, _, err := svc.Student(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 67, summary.Attendance.Percentage)
	assert.Equal(t, 2, summary.Attendance.Present)
	assert.Equal(t, 3, summary.Attendance.Total)
}

func TestDashboardStudentWithoutClass(t *testing.T) {
	student := &models.User{ID: "s1", Name: "Student", Role: models.RoleStudent}
	svc := NewDashboardService(DashboardServiceParams{
		Users:         &mockDashUserRepo{byID: map[string]*models.User{"s1": student}, byRole: map[models.UserRole][]models.User{}},
		Subjects:      &mockDashSubjectRepo{},
		Schedules:     &mockDashScheduleRepo{},
		Announcements: &mockDashAnnouncementRepo{},
		Attendance:    &mockDashAttendanceRepo{},
		Grades:        &mockDashGradeRepo{},
		Assignments:   &mockDashAssignmentRepo{},
		Resources:     &mockDashResourceRepo{},
	})

	summary, _, err := svc.Student(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, summary.Routine)
	assert.Empty(t, summary.Assignments)
	assert.Empty(t, summary.Resources)
	assert.NotNil(t, summary.Routine)
	assert.Equal(t, 0, summary.Attendance.Percentage)
}

func TestDashboardStudentWithoutClassSeesSchoolWideNotices(t *testing.T) {
	student := &models.User{ID: "s1", Name: "Student", Role: models.RoleStudent}
	adminID := "a1"
	announcements := &mockDashAnnouncementRepo{forClass: []models.AnnouncementDetail{
		{Announcement: models.Announcement{ID: "n1", Title: "Holiday", AdminID: &adminID}},
	}}
	svc := NewDashboardService(DashboardServiceParams{
		Users:         &mockDashUserRepo{byID: map[string]*models.User{"s1": student}, byRole: map[models.UserRole][]models.User{}},
		Subjects:      &mockDashSubjectRepo{},
		Schedules:     &mockDashScheduleRepo{},
		Announcements: announcements,
		Attendance:    &mockDashAttendanceRepo{},
		Grades:        &mockDashGradeRepo{},
		Assignments:   &mockDashAssignmentRepo{},
		Resources:     &mockDashResourceRepo{},
	})

	summary, _, err := svc.Student(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, summary.Announcements, 1)
	assert.Equal(t, "Holiday", summary.Announcements[0].Title)
	assert.Equal(t, "", announcements.forClassName)
	assert.Empty(t, summary.Routine)
}

func TestDashboardParentNoLinkedStudent(t *testing.T) {
	parent := &models.User{ID: "p1", Name: "Parent", Role: models.RoleParent}
	svc := NewDashboardService(DashboardServiceParams{
		Users:         &mockDashUserRepo{byID: map[string]*models.User{"p1": parent}, childOf: map[string]*models.User{}},
		Subjects:      &mockDashSubjectRepo{},
		Schedules:     &mockDashScheduleRepo{},
		Announcements: &mockDashAnnouncementRepo{},
		Attendance:    &mockDashAttendanceRepo{},
		Grades:        &mockDashGradeRepo{},
		Messages:      &mockDashMessageRepo{},
	})

	_, _, err := svc.Parent(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoStudentLinked.Code, appErrors.FromError(err).Code)
}

func TestDashboardParentComposesChildData(t *testing.T) {
	parent := &models.User{ID: "p1", Name: "Parent", Role: models.RoleParent, ChildID: strPtr("s1")}
	child := &models.User{ID: "s1", Name: "Child", Role: models.RoleStudent, StudentClass: strPtr("10A")}
	records := []models.Attendance{
		{StudentID: "s1", Status: models.AttendancePresent, Date: time.Now()},
		{StudentID: "s1", Status: models.AttendanceAbsent, Date: time.Now()},
	}
	svc := NewDashboardService(DashboardServiceParams{
		Users: &mockDashUserRepo{
			byID:    map[string]*models.User{"p1": parent},
			childOf: map[string]*models.User{"p1": child},
			byRole:  map[models.UserRole][]models.User{},
		},
		Subjects:      &mockDashSubjectRepo{},
		Schedules:     &mockDashScheduleRepo{},
		Announcements: &mockDashAnnouncementRepo{recentCount: 3},
		Attendance:    &mockDashAttendanceRepo{records: records},
		Grades:        &mockDashGradeRepo{},
		Messages:      &mockDashMessageRepo{unread: 2},
	})

	summary, _, err := svc.Parent(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Child", summary.ParentInfo.ChildName)
	assert.Equal(t, 50, summary.Stats.AttendancePercentage)
	assert.Equal(t, 2, summary.Stats.UnreadMessages)
	assert.Equal(t, 3, summary.Stats.UnreadNotices)
}

func TestBuildAttendanceSummaryEmpty(t *testing.T) {
	summary := buildAttendanceSummary(nil)
	assert.Equal(t, 0, summary.Percentage)
	assert.Equal(t, 0, summary.Total)
	assert.NotNil(t, summary.History)
}
