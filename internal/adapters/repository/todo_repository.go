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

// TodoRepositoryImpl implements the TodoRepository interface on
// Postgres.
type TodoRepositoryImpl struct {
	db *sqlx.DB
}

// NewTodoRepository creates a new todo repository.
func NewTodoRepository(db *sqlx.DB) ports.TodoRepository {
	return &TodoRepositoryImpl{db: db}
}

func (r *TodoRepositoryImpl) Create(ctx context.Context, todo *entities.Todo) error {
	query := `
		INSERT INTO todos (id, title, description, category, priority, due_date, completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	if todo.ID == uuid.Nil {
		todo.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, query,
		todo.ID, todo.Title, todo.Description, todo.Category,
		todo.Priority, todo.DueDate, todo.Completed,
	).Scan(&todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	return nil
}

func (r *TodoRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Todo, error) {
	query := `
		SELECT id, title, description, category, priority, due_date, completed, created_at, updated_at
		FROM todos
		WHERE id = $1`

	var todo entities.Todo
	err := r.db.GetContext(ctx, &todo, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrTodoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	todo.Category = entities.ParseTodoCategory(string(todo.Category))
	todo.Priority = entities.ParseTodoPriority(string(todo.Priority))
	return &todo, nil
}

func (r *TodoRepositoryImpl) Update(ctx context.Context, todo *entities.Todo) error {
	query := `
		UPDATE todos
		SET title = $2, description = $3, category = $4, priority = $5,
			due_date = $6, completed = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		todo.ID, todo.Title, todo.Description, todo.Category,
		todo.Priority, todo.DueDate, todo.Completed)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return entities.ErrTodoNotFound
	}
	return nil
}

func (r *TodoRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return entities.ErrTodoNotFound
	}
	return nil
}

func (r *TodoRepositoryImpl) List(ctx context.Context, filter ports.TodoFilter) ([]*entities.Todo, error) {
	conditions := []string{}
	args := []interface{}{}
	argIdx := 1

	if filter.Completed != nil {
		conditions = append(conditions, fmt.Sprintf("completed = $%d", argIdx))
		args = append(args, *filter.Completed)
		argIdx++
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, *filter.Category)
		argIdx++
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argIdx))
		args = append(args, *filter.Priority)
		argIdx++
	}

	query := `
		SELECT id, title, description, category, priority, due_date, completed, created_at, updated_at
		FROM todos`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	// High before medium before low, then soonest due date.
	query += `
		ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END,
			due_date NULLS LAST, created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	var todos []*entities.Todo
	if err := r.db.SelectContext(ctx, &todos, query, args...); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	for _, t := range todos {
		t.Category = entities.ParseTodoCategory(string(t.Category))
		t.Priority = entities.ParseTodoPriority(string(t.Priority))
	}
	return todos, nil
}
