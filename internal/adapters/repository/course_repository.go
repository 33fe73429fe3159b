package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/ports"
)

// CourseRepositoryImpl implements the CourseRepository interface on
// Postgres.
type CourseRepositoryImpl struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) ports.CourseRepository {
	return &CourseRepositoryImpl{db: db}
}

func (r *CourseRepositoryImpl) Upsert(ctx context.Context, course *entities.Course) error {
	query := `
		INSERT INTO courses (id, title, professor, color, term)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
			professor = COALESCE(EXCLUDED.professor, courses.professor),
			color = COALESCE(EXCLUDED.color, courses.color),
			term = COALESCE(EXCLUDED.term, courses.term),
			updated_at = CURRENT_TIMESTAMP
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		course.ID, course.Title, course.Professor, course.Color, course.Term,
	).Scan(&course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}
	return nil
}

func (r *CourseRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.Course, error) {
	query := `
		SELECT id, title, professor, color, term, created_at, updated_at
		FROM courses
		WHERE id = $1`

	var course entities.Course
	err := r.db.GetContext(ctx, &course, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &course, nil
}

func (r *CourseRepositoryImpl) List(ctx context.Context) ([]*entities.Course, error) {
	query := `
		SELECT id, title, professor, color, term, created_at, updated_at
		FROM courses
		ORDER BY id`

	var courses []*entities.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (r *CourseRepositoryImpl) Update(ctx context.Context, course *entities.Course) error {
	query := `
		UPDATE courses
		SET title = $2, professor = $3, color = $4, term = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		course.ID, course.Title, course.Professor, course.Color, course.Term)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return entities.ErrCourseNotFound
	}
	return nil
}
