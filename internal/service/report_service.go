package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edupanel/edupanel-api/internal/models"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
	"github.com/edupanel/edupanel-api/pkg/export"
)

type reportUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type reportGradeRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.GradeWithSubject, error)
}

type reportAttendanceRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Attendance, error)
}

// ReportFormat selects the report card output encoding.
type ReportFormat string

const (
	ReportFormatPDF ReportFormat = "pdf"
	ReportFormatCSV ReportFormat = "csv"
)

// ReportFile is a rendered document ready to stream.
type ReportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ReportService renders student report cards.
type ReportService struct {
	users      reportUserRepository
	grades     reportGradeRepository
	attendance reportAttendanceRepository
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportService constructs a ReportService instance.
func NewReportService(users reportUserRepository, grades reportGradeRepository, attendance reportAttendanceRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		users:      users,
		grades:     grades,
		attendance: attendance,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		now:        time.Now,
	}
}

// ReportCard renders a student's marks and attendance rate as a downloadable
// document in the requested format.
func (s *ReportService) ReportCard(ctx context.Context, studentID string, format ReportFormat) (*ReportFile, error) {
	switch format {
	case ReportFormatPDF, ReportFormatCSV:
	case "":
		format = ReportFormatPDF
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv")
	}

	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "report cards exist for students only")
	}

	grades, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	attendance, err := s.attendance.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	dataset := buildReportDataset(grades, attendance)
	title := fmt.Sprintf("Report Card - %s", student.Name)

	var (
		data        []byte
		contentType string
		extension   string
	)
	switch format {
	case ReportFormatCSV:
		data, err = s.csv.Render(dataset)
		contentType = "text/csv"
		extension = "csv"
	default:
		data, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
		extension = "pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report card")
	}

	slug := strings.ToLower(strings.ReplaceAll(student.Name, " ", "-"))
	fileName := fmt.Sprintf("report-card-%s-%s.%s", slug, s.now().UTC().Format("2006-01-02"), extension)
	return &ReportFile{FileName: fileName, ContentType: contentType, Data: data}, nil
}

func buildReportDataset(grades []models.GradeWithSubject, attendance []models.Attendance) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Subject", "Quiz", "Mid", "Final", "Total"},
	}
	for _, g := range grades {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Subject": g.SubjectName,
			"Quiz":    formatMarks(g.QuizMarks),
			"Mid":     formatMarks(g.MidMarks),
			"Final":   formatMarks(g.FinalMarks),
			"Total":   formatMarks(g.TotalMarks),
		})
	}

	summary := buildAttendanceSummary(attendance)
	dataset.Rows = append(dataset.Rows, map[string]string{
		"Subject": "Attendance",
		"Total":   strconv.Itoa(summary.Percentage) + "%",
	})
	return dataset
}

func formatMarks(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
