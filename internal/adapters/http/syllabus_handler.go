package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/semesterdesk/core/internal/application/services"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
	"github.com/semesterdesk/core/internal/ports"
)

// maxSyllabusBytes caps uploaded PDFs at 10 MB
const maxSyllabusBytes = 10 << 20

// SyllabusHandler handles syllabus import requests
type SyllabusHandler struct {
	syllabusService *services.SyllabusService
	logger          *logger.Logger
}

// NewSyllabusHandler creates a new syllabus handler
func NewSyllabusHandler(syllabusService *services.SyllabusService, logger *logger.Logger) *SyllabusHandler {
	return &SyllabusHandler{
		syllabusService: syllabusService,
		logger:          logger,
	}
}

// ParseSyllabus handles POST /api/parse-syllabus (multipart upload)
func (h *SyllabusHandler) ParseSyllabus(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file provided")
	}
	if fileHeader.Size > maxSyllabusBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read file")
	}
	defer file.Close()

	pdf, err := io.ReadAll(io.LimitReader(file, maxSyllabusBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read file")
	}

	parsed, err := h.syllabusService.Parse(c.Request().Context(), pdf)
	if err != nil {
		h.logger.Error("Parse syllabus failed", "error", err, "filename", fileHeader.Filename)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, parsed)
}

// SaveParsedSyllabus handles POST /api/save-parsed-syllabus
func (h *SyllabusHandler) SaveParsedSyllabus(c echo.Context) error {
	var parsed ports.ParsedSyllabus
	if err := c.Bind(&parsed); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if parsed.CourseCode == "" && parsed.CourseTitle == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing course code or title")
	}

	result, err := h.syllabusService.SaveParsed(c.Request().Context(), &parsed)
	if err != nil {
		h.logger.Error("Save syllabus failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// BulkLoad handles POST /api/syllabus/load. The loader-secret check
// happens in middleware before this runs.
func (h *SyllabusHandler) BulkLoad(c echo.Context) error {
	var req ports.BulkLoadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON")
	}

	result, err := h.syllabusService.BulkLoad(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Bulk load failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// DigestHandler handles weekly digest requests
type DigestHandler struct {
	digestService *services.DigestService
	logger        *logger.Logger
}

// NewDigestHandler creates a new digest handler
func NewDigestHandler(digestService *services.DigestService, logger *logger.Logger) *DigestHandler {
	return &DigestHandler{
		digestService: digestService,
		logger:        logger,
	}
}

// RunDigest handles POST /api/email-digest. The cron-secret check
// happens in middleware before this runs.
func (h *DigestHandler) RunDigest(c echo.Context) error {
	summary, err := h.digestService.Build(c.Request().Context())
	if err != nil {
		h.logger.Error("Digest build failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, summary)
}
