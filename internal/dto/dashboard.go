package dto

import (
	"time"

	"github.com/edupanel/edupanel-api/internal/models"
)

// AdminUserRow is a user enriched with the derived parent/child linkage shown
// on the admin dashboard. ParentID is nil when no parent references the
// student.
type AdminUserRow struct {
	models.User
	ParentID  *string `json:"parent_id,omitempty"`
	ChildName *string `json:"child_name,omitempty"`
}

// AdminStats carries per-role counts. Each count equals the length of the
// corresponding filtered slice of Users.
type AdminStats struct {
	TotalUsers int `json:"total_users"`
	Students   int `json:"students"`
	Teachers   int `json:"teachers"`
	Parents    int `json:"parents"`
	Admins     int `json:"admins"`
}

// AdminDashboardResponse is the composite admin snapshot.
type AdminDashboardResponse struct {
	Users         []AdminUserRow              `json:"users"`
	Stats         AdminStats                  `json:"stats"`
	Subjects      []models.SubjectWithTeachers `json:"subjects"`
	Teachers      []models.User               `json:"teachers"`
	Announcements []models.AnnouncementDetail `json:"announcements"`
	Schedules     []models.ScheduleDetail     `json:"schedules"`
}

// RoutineSlot is one schedule row shaped for dashboard display.
type RoutineSlot struct {
	ID          string           `json:"id"`
	DayOfWeek   string           `json:"day_of_week"`
	SubjectName string           `json:"subject_name"`
	TeacherName string           `json:"teacher_name"`
	ClassName   string           `json:"class_name"`
	StartTime   models.TimeOfDay `json:"start_time"`
	EndTime     models.TimeOfDay `json:"end_time"`
	RoomNumber  string           `json:"room_number"`
}

// TeacherStats summarises a teacher's load.
type TeacherStats struct {
	TotalClasses  int `json:"total_classes"`
	TotalSubjects int `json:"total_subjects"`
}

// TeacherDashboardResponse is the composite teacher snapshot.
type TeacherDashboardResponse struct {
	Profile       models.UserInfo               `json:"profile"`
	Announcements []models.AnnouncementDetail   `json:"announcements"`
	Routine       []RoutineSlot                 `json:"routine"`
	MyClasses     []models.TeacherSubjectDetail `json:"my_classes"`
	Stats         TeacherStats                  `json:"stats"`
}

// AttendanceDay is the status recorded on one calendar date.
type AttendanceDay struct {
	Date   time.Time               `json:"date"`
	Day    string                  `json:"day"`
	Status models.AttendanceStatus `json:"status"`
}

// AttendanceSummary carries the derived attendance figures.
// Percentage = round(present/total*100); 0 when total is 0.
type AttendanceSummary struct {
	Percentage int             `json:"percentage"`
	Present    int             `json:"present"`
	Total      int             `json:"total"`
	History    []AttendanceDay `json:"history"`
}

// ExamResult is one subject's marks shaped for display.
type ExamResult struct {
	ID          string  `json:"id"`
	SubjectName string  `json:"subject_name"`
	QuizMarks   float64 `json:"quiz_marks"`
	MidMarks    float64 `json:"mid_marks"`
	FinalMarks  float64 `json:"final_marks"`
	TotalMarks  float64 `json:"total_marks"`
}

// NoticeView is an announcement shaped for student/parent display.
type NoticeView struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	AuthorName  string          `json:"author_name"`
	SubjectName *string         `json:"subject_name,omitempty"`
	Origin      models.UserRole `json:"origin"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Contact is a chat roster entry.
type Contact struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StudentDashboardResponse is the composite student snapshot.
type StudentDashboardResponse struct {
	Profile       models.UserInfo          `json:"profile"`
	Routine       []RoutineSlot            `json:"routine"`
	Attendance    AttendanceSummary        `json:"attendance"`
	ExamResults   []ExamResult             `json:"exam_results"`
	Announcements []NoticeView             `json:"announcements"`
	Resources     []models.ResourceDetail  `json:"resources"`
	Assignments   []models.AssignmentDetail `json:"assignments"`
	Teachers      []Contact                `json:"teachers"`
}

// ParentInfo names the parent and the linked child.
type ParentInfo struct {
	Name      string `json:"name"`
	ChildName string `json:"child_name"`
}

// ParentStats carries the parent dashboard counters. Unread notices count
// announcements created within the last seven days.
type ParentStats struct {
	AttendancePercentage int `json:"attendance_percentage"`
	UnreadMessages       int `json:"unread_messages"`
	UnreadNotices        int `json:"unread_notices"`
}

// ParentDashboardResponse is the composite parent snapshot.
type ParentDashboardResponse struct {
	ParentInfo     ParentInfo      `json:"parent_info"`
	StudentProfile models.UserInfo `json:"student_profile"`
	Stats          ParentStats     `json:"stats"`
	Grades         []ExamResult    `json:"grades"`
	Announcements  []NoticeView    `json:"announcements"`
	Routine        []RoutineSlot   `json:"routine"`
	Teachers       []Contact       `json:"teachers"`
}
