package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/semesterdesk/core/internal/application/services"
	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/domain/schedule"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
	"github.com/semesterdesk/core/internal/ports"
)

// AssignmentHandler handles assignment and calendar requests
type AssignmentHandler struct {
	assignmentService *services.AssignmentService
	logger            *logger.Logger
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService *services.AssignmentService, logger *logger.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// CreateAssignment handles POST /api/assignments
func (h *AssignmentHandler) CreateAssignment(c echo.Context) error {
	var req ports.CreateAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	assignment, err := h.assignmentService.CreateAssignment(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create assignment failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, assignment)
}

// GetAssignment handles GET /api/assignments/:id
func (h *AssignmentHandler) GetAssignment(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	assignment, err := h.assignmentService.GetAssignment(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, assignment)
}

// UpdateAssignment handles PUT /api/assignments/:id
func (h *AssignmentHandler) UpdateAssignment(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	assignment, err := h.assignmentService.UpdateAssignment(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update assignment failed", "error", err, "assignment_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, assignment)
}

// UpdateAssignmentStatus handles PATCH /api/assignments/:id/status
func (h *AssignmentHandler) UpdateAssignmentStatus(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status string  `json:"status" validate:"required"`
		Notes  *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	assignment, err := h.assignmentService.UpdateStatus(c.Request().Context(), id, req.Status, req.Notes)
	if err != nil {
		h.logger.Error("Update assignment status failed", "error", err, "assignment_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment handles DELETE /api/assignments/:id
func (h *AssignmentHandler) DeleteAssignment(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.assignmentService.DeleteAssignment(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete assignment failed", "error", err, "assignment_id", id)
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListAssignments handles GET /api/assignments
func (h *AssignmentHandler) ListAssignments(c echo.Context) error {
	window := schedule.ParseWindow(c.QueryParam("window"))

	var courseID *string
	if v := c.QueryParam("course_id"); v != "" {
		courseID = &v
	}
	var status *entities.AssignmentStatus
	if v := c.QueryParam("status"); v != "" {
		parsed := entities.ParseAssignmentStatus(v)
		status = &parsed
	}

	assignments, err := h.assignmentService.ListWindow(c.Request().Context(), window, courseID, status)
	if err != nil {
		h.logger.Error("List assignments failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, assignments)
}

// UrgentAssignments handles GET /api/assignments/urgent
func (h *AssignmentHandler) UrgentAssignments(c echo.Context) error {
	assignments, err := h.assignmentService.Urgent(c.Request().Context())
	if err != nil {
		h.logger.Error("List urgent assignments failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, assignments)
}

// MonthCalendar handles GET /api/calendar
func (h *AssignmentHandler) MonthCalendar(c echo.Context) error {
	now := time.Now()
	year := now.Year()
	month := now.Month()

	if v := c.QueryParam("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid year")
		}
		year = y
	}
	if v := c.QueryParam("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid month")
		}
		month = time.Month(m)
	}

	days, byDay, err := h.assignmentService.MonthView(c.Request().Context(), year, month)
	if err != nil {
		h.logger.Error("Month calendar failed", "error", err, "year", year, "month", month)
		return httpError(err)
	}

	cells := make([]string, len(days))
	for i, d := range days {
		cells[i] = d.Format(entities.DateLayout)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"year":        year,
		"month":       int(month),
		"days":        cells,
		"assignments": byDay,
	})
}
