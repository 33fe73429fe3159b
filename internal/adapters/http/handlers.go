package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/semesterdesk/core/internal/domain/entities"
)

// ErrorResponse is the error body shape for all endpoints
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// parseUUIDParam reads a path parameter as a UUID
func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// httpError maps domain errors onto HTTP status codes
func httpError(err error) error {
	switch {
	case errors.Is(err, entities.ErrCourseNotFound),
		errors.Is(err, entities.ErrAssignmentNotFound),
		errors.Is(err, entities.ErrTodoNotFound),
		errors.Is(err, entities.ErrReadingNotFound),
		errors.Is(err, entities.ErrNoteNotFound),
		errors.Is(err, entities.ErrGradeNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrInvalidDueDate),
		errors.Is(err, entities.ErrMissingCourse):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
