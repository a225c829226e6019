package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupanel/edupanel-api/internal/models"
)

// SubjectRepository provides database access for subjects and the
// teacher-subject assignment links.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new instance of SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByID returns a subject by identifier.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, name, description, created_at FROM subjects WHERE id = $1 LIMIT 1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find subject by id: %w", err)
	}
	return &subject, nil
}

// FindByName returns a subject by exact name.
func (r *SubjectRepository) FindByName(ctx context.Context, name string) (*models.Subject, error) {
	const query = `SELECT id, name, description, created_at FROM subjects WHERE name = $1 LIMIT 1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find subject by name: %w", err)
	}
	return &subject, nil
}

// ListWithTeachers returns all subjects alphabetically, each carrying its
// assigned teachers. Subjects without assignments come back with an empty
// teacher list.
func (r *SubjectRepository) ListWithTeachers(ctx context.Context) ([]models.SubjectWithTeachers, error) {
	const subjectsQuery = `SELECT id, name, description, created_at FROM subjects ORDER BY name ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, subjectsQuery); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	const linksQuery = `SELECT ts.subject_id, ts.teacher_id, u.name AS teacher_name
		FROM teacher_subjects ts
		JOIN users u ON u.id = ts.teacher_id
		ORDER BY u.name ASC`
	var links []struct {
		SubjectID   string `db:"subject_id"`
		TeacherID   string `db:"teacher_id"`
		TeacherName string `db:"teacher_name"`
	}
	if err := r.db.SelectContext(ctx, &links, linksQuery); err != nil {
		return nil, fmt.Errorf("list subject teacher links: %w", err)
	}

	bySubject := make(map[string][]models.SubjectTeacher, len(subjects))
	for _, l := range links {
		bySubject[l.SubjectID] = append(bySubject[l.SubjectID], models.SubjectTeacher{
			TeacherID:   l.TeacherID,
			TeacherName: l.TeacherName,
		})
	}

	result := make([]models.SubjectWithTeachers, 0, len(subjects))
	for _, s := range subjects {
		teachers := bySubject[s.ID]
		if teachers == nil {
			teachers = []models.SubjectTeacher{}
		}
		result = append(result, models.SubjectWithTeachers{Subject: s, Teachers: teachers})
	}
	return result, nil
}

// Create inserts a subject together with its teacher assignments in one
// transaction.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject, links []models.TeacherSubject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create subject: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.NamedExecContext(ctx, `INSERT INTO subjects (id, name, description, created_at) VALUES (:id, :name, :description, :created_at)`, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}

	for i := range links {
		links[i].SubjectID = subject.ID
		if links[i].ID == "" {
			links[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO teacher_subjects (id, teacher_id, subject_id, class_name)
			VALUES (:id, :teacher_id, :subject_id, :class_name)`, links[i]); err != nil {
			return fmt.Errorf("create teacher subject link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create subject: %w", err)
	}
	return nil
}

// AssignTeacher links a teacher to a subject for a class.
func (r *SubjectRepository) AssignTeacher(ctx context.Context, link *models.TeacherSubject) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	const query = `INSERT INTO teacher_subjects (id, teacher_id, subject_id, class_name)
		VALUES (:id, :teacher_id, :subject_id, :class_name)`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("assign teacher to subject: %w", err)
	}
	return nil
}

// ListTeacherAssignments returns all subject/class assignments for a teacher.
func (r *SubjectRepository) ListTeacherAssignments(ctx context.Context, teacherID string) ([]models.TeacherSubjectDetail, error) {
	const query = `SELECT ts.id, ts.teacher_id, ts.subject_id, ts.class_name,
			s.name AS subject_name, u.name AS teacher_name
		FROM teacher_subjects ts
		JOIN subjects s ON s.id = ts.subject_id
		JOIN users u ON u.id = ts.teacher_id
		WHERE ts.teacher_id = $1
		ORDER BY s.name ASC, ts.class_name ASC`
	var assignments []models.TeacherSubjectDetail
	if err := r.db.SelectContext(ctx, &assignments, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher assignments: %w", err)
	}
	return assignments, nil
}

// Delete removes a subject with all rows referencing it in one transaction:
// live requests, teacher assignments, schedules and assignments go first so
// the subject row can be dropped without violating foreign keys.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete subject: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	steps := []struct {
		name  string
		query string
	}{
		{"delete live requests", `DELETE FROM live_requests WHERE subject_id = $1`},
		{"delete teacher subjects", `DELETE FROM teacher_subjects WHERE subject_id = $1`},
		{"delete class schedules", `DELETE FROM class_schedules WHERE subject_id = $1`},
		{"delete assignments", `DELETE FROM assignments WHERE subject_id = $1`},
		{"delete subject", `DELETE FROM subjects WHERE id = $1`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, id); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete subject: %w", err)
	}
	return nil
}
