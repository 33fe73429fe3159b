package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
	"github.com/semesterdesk/core/internal/ports"
)

// TodoService handles to-do list operations.
type TodoService struct {
	todoRepo ports.TodoRepository
	logger   *logger.Logger
}

// NewTodoService creates a new todo service.
func NewTodoService(todoRepo ports.TodoRepository, logger *logger.Logger) *TodoService {
	return &TodoService{
		todoRepo: todoRepo,
		logger:   logger,
	}
}

// CreateTodo creates a new todo. Category and priority strings are
// coerced into their closed sets.
func (s *TodoService) CreateTodo(ctx context.Context, req ports.CreateTodoRequest) (*entities.Todo, error) {
	todo := &entities.Todo{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Category:    entities.ParseTodoCategory(req.Category),
		Priority:    entities.ParseTodoPriority(req.Priority),
		DueDate:     req.DueDate,
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.logger.Infow("Todo created", "todo_id", todo.ID, "category", todo.Category, "priority", todo.Priority)
	return todo, nil
}

// GetTodo retrieves a todo by ID.
func (s *TodoService) GetTodo(ctx context.Context, id uuid.UUID) (*entities.Todo, error) {
	todo, err := s.todoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return todo, nil
}

// UpdateTodo applies a partial update.
func (s *TodoService) UpdateTodo(ctx context.Context, id uuid.UUID, req ports.UpdateTodoRequest) (*entities.Todo, error) {
	existing, err := s.todoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}

	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.Category != nil {
		existing.Category = entities.ParseTodoCategory(*req.Category)
	}
	if req.Priority != nil {
		existing.Priority = entities.ParseTodoPriority(*req.Priority)
	}
	if req.DueDate != nil {
		existing.DueDate = req.DueDate
	}
	if req.Completed != nil {
		existing.Completed = *req.Completed
	}

	if err := s.todoRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	s.logger.Infow("Todo updated", "todo_id", id, "completed", existing.Completed)
	return existing, nil
}

// DeleteTodo deletes a todo.
func (s *TodoService) DeleteTodo(ctx context.Context, id uuid.UUID) error {
	if err := s.todoRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	s.logger.Infow("Todo deleted", "todo_id", id)
	return nil
}

// ListTodos retrieves todos with optional filtering.
func (s *TodoService) ListTodos(ctx context.Context, filter ports.TodoFilter) ([]*entities.Todo, error) {
	todos, err := s.todoRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}
