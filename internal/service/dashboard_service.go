package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/edupanel/edupanel-api/internal/dto"
	"github.com/edupanel/edupanel-api/internal/models"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
)

type dashUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindChildOfParent(ctx context.Context, parent *models.User) (*models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

type dashSubjectRepository interface {
	ListWithTeachers(ctx context.Context) ([]models.SubjectWithTeachers, error)
	ListTeacherAssignments(ctx context.Context, teacherID string) ([]models.TeacherSubjectDetail, error)
}

type dashScheduleRepository interface {
	ListAll(ctx context.Context) ([]models.ScheduleDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleDetail, error)
	ListByClass(ctx context.Context, className string) ([]models.ScheduleDetail, error)
}

type dashAnnouncementRepository interface {
	ListLatest(ctx context.Context, limit int) ([]models.AnnouncementDetail, error)
	ListForClass(ctx context.Context, className string) ([]models.AnnouncementDetail, error)
	CountRecentForClass(ctx context.Context, className string, since time.Time) (int, error)
}

type dashAttendanceRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Attendance, error)
}

type dashGradeRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.GradeWithSubject, error)
}

type dashAssignmentRepository interface {
	ListByClass(ctx context.Context, className string) ([]models.AssignmentDetail, error)
}

type dashResourceRepository interface {
	ListByClass(ctx context.Context, className string) ([]models.ResourceDetail, error)
}

type dashMessageRepository interface {
	CountUnread(ctx context.Context, userID string) (int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL           time.Duration
	AnnouncementLimit  int
	RecentNoticeWindow time.Duration
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Users         dashUserRepository
	Subjects      dashSubjectRepository
	Schedules     dashScheduleRepository
	Announcements dashAnnouncementRepository
	Attendance    dashAttendanceRepository
	Grades        dashGradeRepository
	Assignments   dashAssignmentRepository
	Resources     dashResourceRepository
	Messages      dashMessageRepository
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// DashboardService composes the per-role dashboard payloads.
type DashboardService struct {
	users         dashUserRepository
	subjects      dashSubjectRepository
	schedules     dashScheduleRepository
	announcements dashAnnouncementRepository
	attendance    dashAttendanceRepository
	grades        dashGradeRepository
	assignments   dashAssignmentRepository
	resources     dashResourceRepository
	messages      dashMessageRepository
	cache         *CacheService
	logger        *zap.Logger
	now           func() time.Time
	cfg           DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.AnnouncementLimit <= 0 {
		cfg.AnnouncementLimit = 5
	}
	if cfg.RecentNoticeWindow <= 0 {
		cfg.RecentNoticeWindow = 7 * 24 * time.Hour
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		users:         params.Users,
		subjects:      params.Subjects,
		schedules:     params.Schedules,
		announcements: params.Announcements,
		attendance:    params.Attendance,
		grades:        params.Grades,
		assignments:   params.Assignments,
		resources:     params.Resources,
		messages:      params.Messages,
		cache:         params.Cache,
		logger:        logger,
		now:           time.Now,
		cfg:           cfg,
	}
}

// Admin returns the admin snapshot and indicates cache utilisation.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboardResponse, bool, error) {
	const cacheKey = "dashboard:admin"
	if s.cache != nil {
		var cached dto.AdminDashboardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	summary, err := s.composeAdmin(ctx)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

func (s *DashboardService) composeAdmin(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}

	// Parent/child linkage is derived in memory from the single users slice:
	// each parent's child_id yields both directions of the mapping.
	nameByID := make(map[string]string, len(users))
	for _, u := range users {
		nameByID[u.ID] = u.Name
	}
	parentByStudent := make(map[string]string)
	childNameByParent := make(map[string]string)
	for _, u := range users {
		if u.Role == models.RoleParent && u.ChildID != nil {
			parentByStudent[*u.ChildID] = u.ID
			if name, ok := nameByID[*u.ChildID]; ok {
				childNameByParent[u.ID] = name
			}
		}
	}

	rows := make([]dto.AdminUserRow, 0, len(users))
	stats := dto.AdminStats{TotalUsers: len(users)}
	for _, u := range users {
		row := dto.AdminUserRow{User: u}
		switch u.Role {
		case models.RoleStudent:
			stats.Students++
			if parentID, ok := parentByStudent[u.ID]; ok {
				row.ParentID = &parentID
			}
		case models.RoleTeacher:
			stats.Teachers++
		case models.RoleParent:
			stats.Parents++
			if childName, ok := childNameByParent[u.ID]; ok {
				row.ChildName = &childName
			}
		case models.RoleAdmin:
			stats.Admins++
		}
		rows = append(rows, row)
	}

	subjects, err := s.subjects.ListWithTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	teachers, err := s.users.ListByRole(ctx, models.RoleTeacher)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	schedules, err := s.schedules.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
	}

	// The admin view stays usable without notices.
	notices, err := s.announcements.ListLatest(ctx, s.cfg.AnnouncementLimit)
	if err != nil {
		s.logger.Warn("failed to load announcements for admin dashboard", zap.Error(err))
		notices = []models.AnnouncementDetail{}
	}

	return &dto.AdminDashboardResponse{
		Users:         rows,
		Stats:         stats,
		Subjects:      subjects,
		Teachers:      teachers,
		Announcements: notices,
		Schedules:     schedules,
	}, nil
}

// Teacher returns the teacher snapshot and indicates cache utilisation.
func (s *DashboardService) Teacher(ctx context.Context, teacherID string) (*dto.TeacherDashboardResponse, bool, error) {
	cacheKey := fmt.Sprintf("dashboard:teacher:%s", teacherID)
	if s.cache != nil {
		var cached dto.TeacherDashboardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	teacher, err := s.loadUser(ctx, teacherID, models.RoleTeacher)
	if err != nil {
		return nil, false, err
	}

	schedules, err := s.schedules.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load routine")
	}
	assignments, err := s.subjects.ListTeacherAssignments(ctx, teacherID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching load")
	}
	notices, err := s.announcements.ListLatest(ctx, s.cfg.AnnouncementLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcements")
	}

	classSet := make(map[string]struct{})
	subjectSet := make(map[string]struct{})
	for _, a := range assignments {
		if a.ClassName != nil {
			classSet[*a.ClassName] = struct{}{}
		}
		subjectSet[a.SubjectID] = struct{}{}
	}

	summary := &dto.TeacherDashboardResponse{
		Profile:       UserToInfo(teacher),
		Announcements: notices,
		Routine:       toRoutine(schedules),
		MyClasses:     assignments,
		Stats: dto.TeacherStats{
			TotalClasses:  len(classSet),
			TotalSubjects: len(subjectSet),
		},
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// Student returns the student snapshot and indicates cache utilisation.
func (s *DashboardService) Student(ctx context.Context, studentID string) (*dto.StudentDashboardResponse, bool, error) {
	cacheKey := fmt.Sprintf("dashboard:student:%s", studentID)
	if s.cache != nil {
		var cached dto.StudentDashboardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	student, err := s.loadUser(ctx, studentID, models.RoleStudent)
	if err != nil {
		return nil, false, err
	}

	summary, err := s.composeStudent(ctx, student)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

func (s *DashboardService) composeStudent(ctx context.Context, student *models.User) (*dto.StudentDashboardResponse, error) {
	className := ""
	if student.StudentClass != nil {
		className = *student.StudentClass
	}

	summary := &dto.StudentDashboardResponse{
		Profile:       UserToInfo(student),
		Routine:       []dto.RoutineSlot{},
		ExamResults:   []dto.ExamResult{},
		Announcements: []dto.NoticeView{},
		Resources:     []models.ResourceDetail{},
		Assignments:   []models.AssignmentDetail{},
		Teachers:      []dto.Contact{},
	}

	attendance, err := s.attendance.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	summary.Attendance = buildAttendanceSummary(attendance)

	grades, err := s.grades.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	summary.ExamResults = toExamResults(grades)

	teachers, err := s.users.ListByRole(ctx, models.RoleTeacher)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	summary.Teachers = toContacts(teachers)

	// School-wide and admin notices reach every student, assigned class or not.
	notices, err := s.announcements.ListForClass(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcements")
	}
	summary.Announcements = toNoticeViews(notices)

	// A student without an assigned class has no class-scoped data yet.
	if className == "" {
		return summary, nil
	}

	schedules, err := s.schedules.ListByClass(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load routine")
	}
	summary.Routine = toRoutine(schedules)

	resources, err := s.resources.ListByClass(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resources")
	}
	summary.Resources = resources

	assignments, err := s.assignments.ListByClass(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	summary.Assignments = assignments

	return summary, nil
}

// Parent returns the parent snapshot and indicates cache utilisation. A
// parent without a linked student gets a not found with a specific message.
func (s *DashboardService) Parent(ctx context.Context, parentID string) (*dto.ParentDashboardResponse, bool, error) {
	cacheKey := fmt.Sprintf("dashboard:parent:%s", parentID)
	if s.cache != nil {
		var cached dto.ParentDashboardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	parent, err := s.loadUser(ctx, parentID, models.RoleParent)
	if err != nil {
		return nil, false, err
	}

	child, err := s.users.FindChildOfParent(ctx, parent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.ErrNoStudentLinked
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve child")
	}

	attendance, err := s.attendance.ListByStudent(ctx, child.ID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	grades, err := s.grades.ListByStudent(ctx, child.ID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	unreadMessages, err := s.messages.CountUnread(ctx, parentID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread messages")
	}
	teachers, err := s.users.ListByRole(ctx, models.RoleTeacher)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}

	className := ""
	if child.StudentClass != nil {
		className = *child.StudentClass
	}

	// School-wide and admin notices apply to the child even without a class.
	notices, err := s.announcements.ListForClass(ctx, className)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcements")
	}
	noticeViews := toNoticeViews(notices)

	since := s.now().UTC().Add(-s.cfg.RecentNoticeWindow)
	unreadNotices, err := s.announcements.CountRecentForClass(ctx, className, since)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count recent notices")
	}

	routine := []dto.RoutineSlot{}
	if className != "" {
		schedules, err := s.schedules.ListByClass(ctx, className)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load routine")
		}
		routine = toRoutine(schedules)
	}

	attendanceSummary := buildAttendanceSummary(attendance)

	summary := &dto.ParentDashboardResponse{
		ParentInfo: dto.ParentInfo{
			Name:      parent.Name,
			ChildName: child.Name,
		},
		StudentProfile: UserToInfo(child),
		Stats: dto.ParentStats{
			AttendancePercentage: attendanceSummary.Percentage,
			UnreadMessages:       unreadMessages,
			UnreadNotices:        unreadNotices,
		},
		Grades:        toExamResults(grades),
		Announcements: noticeViews,
		Routine:       routine,
		Teachers:      toContacts(teachers),
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

func (s *DashboardService) loadUser(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role != role {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "dashboard does not match account role")
	}
	return user, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// buildAttendanceSummary derives the percentage and day-by-day history.
// Percentage is round(present/total*100), 0 when no records exist.
func buildAttendanceSummary(records []models.Attendance) dto.AttendanceSummary {
	history := make([]dto.AttendanceDay, 0, len(records))
	present := 0
	for _, rec := range records {
		if rec.Status == models.AttendancePresent {
			present++
		}
		history = append(history, dto.AttendanceDay{
			Date:   rec.Date,
			Day:    rec.Date.Weekday().String(),
			Status: rec.Status,
		})
	}
	percentage := 0
	if len(records) > 0 {
		percentage = int(math.Round(float64(present) / float64(len(records)) * 100))
	}
	return dto.AttendanceSummary{
		Percentage: percentage,
		Present:    present,
		Total:      len(records),
		History:    history,
	}
}

func toRoutine(schedules []models.ScheduleDetail) []dto.RoutineSlot {
	routine := make([]dto.RoutineSlot, 0, len(schedules))
	for _, sch := range schedules {
		routine = append(routine, dto.RoutineSlot{
			ID:          sch.ID,
			DayOfWeek:   sch.DayOfWeek,
			SubjectName: sch.SubjectName,
			TeacherName: sch.TeacherName,
			ClassName:   sch.ClassName,
			StartTime:   sch.StartTime,
			EndTime:     sch.EndTime,
			RoomNumber:  sch.RoomNumber,
		})
	}
	return routine
}

func toExamResults(grades []models.GradeWithSubject) []dto.ExamResult {
	results := make([]dto.ExamResult, 0, len(grades))
	for _, g := range grades {
		results = append(results, dto.ExamResult{
			ID:          g.ID,
			SubjectName: g.SubjectName,
			QuizMarks:   g.QuizMarks,
			MidMarks:    g.MidMarks,
			FinalMarks:  g.FinalMarks,
			TotalMarks:  g.TotalMarks,
		})
	}
	return results
}

func toNoticeViews(notices []models.AnnouncementDetail) []dto.NoticeView {
	views := make([]dto.NoticeView, 0, len(notices))
	for _, n := range notices {
		origin := models.RoleTeacher
		if n.AdminID != nil {
			origin = models.RoleAdmin
		}
		authorName := ""
		if n.AuthorName != nil {
			authorName = *n.AuthorName
		}
		views = append(views, dto.NoticeView{
			ID:          n.ID,
			Title:       n.Title,
			Content:     n.Content,
			AuthorName:  authorName,
			SubjectName: n.SubjectName,
			Origin:      origin,
			CreatedAt:   n.CreatedAt,
		})
	}
	return views
}

func toContacts(users []models.User) []dto.Contact {
	contacts := make([]dto.Contact, 0, len(users))
	for _, u := range users {
		contacts = append(contacts, dto.Contact{ID: u.ID, Name: u.Name})
	}
	return contacts
}
