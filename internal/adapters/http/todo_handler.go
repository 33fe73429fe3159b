package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/semesterdesk/core/internal/application/services"
	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
	"github.com/semesterdesk/core/internal/ports"
)

// TodoHandler handles todo list requests
type TodoHandler struct {
	todoService *services.TodoService
	logger      *logger.Logger
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todoService *services.TodoService, logger *logger.Logger) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
		logger:      logger,
	}
}

// CreateTodo handles POST /api/todos
func (h *TodoHandler) CreateTodo(c echo.Context) error {
	var req ports.CreateTodoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	todo, err := h.todoService.CreateTodo(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create todo failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, todo)
}

// GetTodo handles GET /api/todos/:id
func (h *TodoHandler) GetTodo(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	todo, err := h.todoService.GetTodo(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, todo)
}

// UpdateTodo handles PUT /api/todos/:id
func (h *TodoHandler) UpdateTodo(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateTodoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	todo, err := h.todoService.UpdateTodo(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update todo failed", "error", err, "todo_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, todo)
}

// DeleteTodo handles DELETE /api/todos/:id
func (h *TodoHandler) DeleteTodo(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.todoService.DeleteTodo(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete todo failed", "error", err, "todo_id", id)
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListTodos handles GET /api/todos
func (h *TodoHandler) ListTodos(c echo.Context) error {
	filter := ports.TodoFilter{}

	if v := c.QueryParam("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid completed value")
		}
		filter.Completed = &completed
	}
	if v := c.QueryParam("category"); v != "" {
		category := entities.ParseTodoCategory(v)
		filter.Category = &category
	}
	if v := c.QueryParam("priority"); v != "" {
		priority := entities.ParseTodoPriority(v)
		filter.Priority = &priority
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
		filter.Limit = limit
	}

	todos, err := h.todoService.ListTodos(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List todos failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, todos)
}
