package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/ports"
)

// assignmentRow joins an assignment with its denormalized course
// columns for single-query reads.
type assignmentRow struct {
	entities.Assignment
	CourseTitle     *string `db:"course_title"`
	CourseProfessor *string `db:"course_professor"`
	CourseColor     *string `db:"course_color"`
}

func (r assignmentRow) toEntity() *entities.Assignment {
	a := r.Assignment
	a.Status = entities.ParseAssignmentStatus(string(a.Status))
	if r.CourseTitle != nil {
		a.Course = &entities.Course{
			ID:        a.CourseID,
			Title:     *r.CourseTitle,
			Professor: r.CourseProfessor,
			Color:     r.CourseColor,
		}
	}
	return &a
}

const assignmentSelect = `
	SELECT a.id, a.course_id, a.title, a.due_date, a.notes, a.status,
		a.created_at, a.updated_at,
		c.title AS course_title, c.professor AS course_professor, c.color AS course_color
	FROM assignments a
	LEFT JOIN courses c ON c.id = a.course_id`

// AssignmentRepositoryImpl implements the AssignmentRepository
// interface on Postgres.
type AssignmentRepositoryImpl struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) ports.AssignmentRepository {
	return &AssignmentRepositoryImpl{db: db}
}

func (r *AssignmentRepositoryImpl) Create(ctx context.Context, assignment *entities.Assignment) error {
	query := `
		INSERT INTO assignments (id, course_id, title, due_date, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, query,
		assignment.ID, assignment.CourseID, assignment.Title,
		assignment.DueDate, assignment.Notes, assignment.Status,
	).Scan(&assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

func (r *AssignmentRepositoryImpl) CreateBatch(ctx context.Context, assignments []*entities.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	query := `
		INSERT INTO assignments (id, course_id, title, due_date, notes, status)
		VALUES (:id, :course_id, :title, :due_date, :notes, :status)`

	for _, a := range assignments {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
	}
	if _, err := r.db.NamedExecContext(ctx, query, assignments); err != nil {
		return fmt.Errorf("create assignments: %w", err)
	}
	return nil
}

func (r *AssignmentRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Assignment, error) {
	var row assignmentRow
	err := r.db.GetContext(ctx, &row, assignmentSelect+` WHERE a.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return row.toEntity(), nil
}

func (r *AssignmentRepositoryImpl) Update(ctx context.Context, assignment *entities.Assignment) error {
	query := `
		UPDATE assignments
		SET title = $2, due_date = $3, notes = $4, status = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		assignment.ID, assignment.Title, assignment.DueDate, assignment.Notes, assignment.Status)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return entities.ErrAssignmentNotFound
	}
	return nil
}

func (r *AssignmentRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.AssignmentStatus, notes *string) error {
	query := `
		UPDATE assignments
		SET status = $2,
			notes = COALESCE($3, notes),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, notes)
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return entities.ErrAssignmentNotFound
	}
	return nil
}

func (r *AssignmentRepositoryImpl) List(ctx context.Context, filter ports.AssignmentFilter) ([]*entities.Assignment, error) {
	conditions := []string{}
	args := []interface{}{}
	argIdx := 1

	addCondition := func(clause string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(clause, argIdx))
		args = append(args, value)
		argIdx++
	}

	if filter.CourseID != nil {
		addCondition("a.course_id = $%d", *filter.CourseID)
	}
	if filter.Status != nil {
		addCondition("a.status = $%d", *filter.Status)
	}
	if filter.NotStatus != nil {
		addCondition("a.status <> $%d", *filter.NotStatus)
	}
	if filter.DueAfter != nil {
		addCondition("a.due_date >= $%d", *filter.DueAfter)
	}
	if filter.DueBefore != nil {
		addCondition("a.due_date <= $%d", *filter.DueBefore)
	}

	query := assignmentSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.due_date, a.title"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	var rows []assignmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	assignments := make([]*entities.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.toEntity())
	}
	return assignments, nil
}

func (r *AssignmentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete assignment rows affected: %w", err)
	}
	if affected == 0 {
		return entities.ErrAssignmentNotFound
	}
	return nil
}

func (r *AssignmentRepositoryImpl) DeleteByCourse(ctx context.Context, courseID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("delete assignments for course: %w", err)
	}
	return nil
}
