package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/semesterdesk/core/internal/application/services"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
	"github.com/semesterdesk/core/internal/ports"
)

// CourseHandler handles course, reading, and grade requests
type CourseHandler struct {
	courseService *services.CourseService
	logger        *logger.Logger
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService *services.CourseService, logger *logger.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		logger:        logger,
	}
}

// ListCourses handles GET /api/courses
func (h *CourseHandler) ListCourses(c echo.Context) error {
	courses, err := h.courseService.ListCourses(c.Request().Context())
	if err != nil {
		h.logger.Error("List courses failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, courses)
}

// GetCourse handles GET /api/courses/:id
func (h *CourseHandler) GetCourse(c echo.Context) error {
	course, err := h.courseService.GetCourse(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, course)
}

// ListReadings handles GET /api/courses/:id/readings
func (h *CourseHandler) ListReadings(c echo.Context) error {
	readings, err := h.courseService.ListReadings(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("List readings failed", "error", err, "course_id", c.Param("id"))
		return httpError(err)
	}

	return c.JSON(http.StatusOK, readings)
}

// UpsertGrade handles PUT /api/grades
func (h *CourseHandler) UpsertGrade(c echo.Context) error {
	var req ports.UpsertGradeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	grade, err := h.courseService.UpsertGrade(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Upsert grade failed", "error", err, "course_id", req.CourseID)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, grade)
}

// ListGrades handles GET /api/grades
func (h *CourseHandler) ListGrades(c echo.Context) error {
	grades, err := h.courseService.ListGrades(c.Request().Context())
	if err != nil {
		h.logger.Error("List grades failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, grades)
}

// GPAReport handles GET /api/grades/gpa
func (h *CourseHandler) GPAReport(c echo.Context) error {
	report, err := h.courseService.GPA(c.Request().Context())
	if err != nil {
		h.logger.Error("GPA report failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, report)
}
