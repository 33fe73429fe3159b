package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/ports"
)

// ReadingRepositoryImpl implements the ReadingRepository interface.
type ReadingRepositoryImpl struct {
	db *sqlx.DB
}

// NewReadingRepository creates a new reading repository.
func NewReadingRepository(db *sqlx.DB) ports.ReadingRepository {
	return &ReadingRepositoryImpl{db: db}
}

func (r *ReadingRepositoryImpl) CreateBatch(ctx context.Context, readings []*entities.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	query := `
		INSERT INTO readings (id, course_id, week, title, source, pages, url, required, completed)
		VALUES (:id, :course_id, :week, :title, :source, :pages, :url, :required, :completed)`

	for _, reading := range readings {
		if reading.ID == uuid.Nil {
			reading.ID = uuid.New()
		}
	}
	if _, err := r.db.NamedExecContext(ctx, query, readings); err != nil {
		return fmt.Errorf("create readings: %w", err)
	}
	return nil
}

func (r *ReadingRepositoryImpl) ListByCourse(ctx context.Context, courseID string) ([]*entities.Reading, error) {
	query := `
		SELECT id, course_id, week, title, source, pages, url, required, completed, created_at
		FROM readings
		WHERE course_id = $1
		ORDER BY week NULLS LAST, title`

	var readings []*entities.Reading
	if err := r.db.SelectContext(ctx, &readings, query, courseID); err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	return readings, nil
}

func (r *ReadingRepositoryImpl) DeleteByCourse(ctx context.Context, courseID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM readings WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("delete readings for course: %w", err)
	}
	return nil
}

// NoteRepositoryImpl implements the NoteRepository interface.
type NoteRepositoryImpl struct {
	db *sqlx.DB
}

// NewNoteRepository creates a new note repository.
func NewNoteRepository(db *sqlx.DB) ports.NoteRepository {
	return &NoteRepositoryImpl{db: db}
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entities.Note) error {
	query := `
		INSERT INTO notes (id, kind, ref_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, query, note.ID, note.Kind, note.RefID, note.Content).
		Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

func (r *NoteRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Note, error) {
	query := `
		SELECT id, kind, ref_id, content, created_at, updated_at
		FROM notes
		WHERE id = $1`

	var note entities.Note
	err := r.db.GetContext(ctx, &note, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	note.Kind = entities.ParseNoteKind(string(note.Kind))
	return &note, nil
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entities.Note) error {
	query := `
		UPDATE notes
		SET content = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, note.ID, note.Content)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return entities.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return entities.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepositoryImpl) List(ctx context.Context, filter ports.NoteFilter) ([]*entities.Note, error) {
	conditions := []string{}
	args := []interface{}{}
	argIdx := 1

	if filter.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, *filter.Kind)
		argIdx++
	}
	if filter.RefID != nil {
		conditions = append(conditions, fmt.Sprintf("ref_id = $%d", argIdx))
		args = append(args, *filter.RefID)
		argIdx++
	}

	query := `
		SELECT id, kind, ref_id, content, created_at, updated_at
		FROM notes`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	var notes []*entities.Note
	if err := r.db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	for _, n := range notes {
		n.Kind = entities.ParseNoteKind(string(n.Kind))
	}
	return notes, nil
}

// StudySessionRepositoryImpl implements the StudySessionRepository
// interface.
type StudySessionRepositoryImpl struct {
	db *sqlx.DB
}

// NewStudySessionRepository creates a new study session repository.
func NewStudySessionRepository(db *sqlx.DB) ports.StudySessionRepository {
	return &StudySessionRepositoryImpl{db: db}
}

func (r *StudySessionRepositoryImpl) Create(ctx context.Context, session *entities.StudySession) error {
	query := `
		INSERT INTO study_sessions (id, course_id, started_at, duration_minutes)
		VALUES ($1, $2, $3, $4)`

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	if _, err := r.db.ExecContext(ctx, query,
		session.ID, session.CourseID, session.StartedAt, session.DurationMinutes); err != nil {
		return fmt.Errorf("create study session: %w", err)
	}
	return nil
}

func (r *StudySessionRepositoryImpl) ListSince(ctx context.Context, since time.Time) ([]*entities.StudySession, error) {
	query := `
		SELECT id, course_id, started_at, duration_minutes
		FROM study_sessions
		WHERE started_at >= $1
		ORDER BY started_at DESC`

	var sessions []*entities.StudySession
	if err := r.db.SelectContext(ctx, &sessions, query, since); err != nil {
		return nil, fmt.Errorf("list study sessions: %w", err)
	}
	return sessions, nil
}

func (r *StudySessionRepositoryImpl) TotalMinutesSince(ctx context.Context, since time.Time) (int, error) {
	var total int
	query := `
		SELECT COALESCE(SUM(duration_minutes), 0)
		FROM study_sessions
		WHERE started_at >= $1`
	if err := r.db.GetContext(ctx, &total, query, since); err != nil {
		return 0, fmt.Errorf("sum study minutes: %w", err)
	}
	return total, nil
}

// GradeRepositoryImpl implements the GradeRepository interface.
type GradeRepositoryImpl struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) ports.GradeRepository {
	return &GradeRepositoryImpl{db: db}
}

func (r *GradeRepositoryImpl) Upsert(ctx context.Context, grade *entities.CourseGrade) error {
	query := `
		INSERT INTO course_grades (course_id, credits, current_grade, projected_grade)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (course_id) DO UPDATE
		SET credits = EXCLUDED.credits,
			current_grade = COALESCE(EXCLUDED.current_grade, course_grades.current_grade),
			projected_grade = COALESCE(EXCLUDED.projected_grade, course_grades.projected_grade),
			updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		grade.CourseID, grade.Credits, grade.CurrentGrade, grade.ProjectedGrade,
	).Scan(&grade.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

func (r *GradeRepositoryImpl) List(ctx context.Context) ([]*entities.CourseGrade, error) {
	query := `
		SELECT course_id, credits, current_grade, projected_grade, updated_at
		FROM course_grades
		ORDER BY course_id`

	var grades []*entities.CourseGrade
	if err := r.db.SelectContext(ctx, &grades, query); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}
