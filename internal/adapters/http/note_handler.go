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

// NoteHandler handles note requests
type NoteHandler struct {
	noteService *services.NoteService
	logger      *logger.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService *services.NoteService, logger *logger.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger,
	}
}

// CreateNote handles POST /api/notes
func (h *NoteHandler) CreateNote(c echo.Context) error {
	var req ports.CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	note, err := h.noteService.CreateNote(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create note failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/:id
func (h *NoteHandler) UpdateNote(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	note, err := h.noteService.UpdateNote(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update note failed", "error", err, "note_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/:id
func (h *NoteHandler) DeleteNote(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.noteService.DeleteNote(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete note failed", "error", err, "note_id", id)
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListNotes handles GET /api/notes
func (h *NoteHandler) ListNotes(c echo.Context) error {
	filter := ports.NoteFilter{}

	if v := c.QueryParam("kind"); v != "" {
		kind := entities.ParseNoteKind(v)
		filter.Kind = &kind
	}
	if v := c.QueryParam("ref_id"); v != "" {
		filter.RefID = &v
	}

	notes, err := h.noteService.ListNotes(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List notes failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, notes)
}

// StudyHandler handles focus-timer session requests
type StudyHandler struct {
	studyService *services.StudyService
	logger       *logger.Logger
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(studyService *services.StudyService, logger *logger.Logger) *StudyHandler {
	return &StudyHandler{
		studyService: studyService,
		logger:       logger,
	}
}

// RecordSession handles POST /api/study-sessions
func (h *StudyHandler) RecordSession(c echo.Context) error {
	var req ports.CreateStudySessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.studyService.RecordSession(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Record study session failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, session)
}

// ListSessions handles GET /api/study-sessions
func (h *StudyHandler) ListSessions(c echo.Context) error {
	days := 7
	if v := c.QueryParam("days"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid days")
		}
		days = d
	}

	sessions, err := h.studyService.RecentSessions(c.Request().Context(), days)
	if err != nil {
		h.logger.Error("List study sessions failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, sessions)
}
