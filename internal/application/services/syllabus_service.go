package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/semesterdesk/core/internal/adapters/llm"
	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
	"github.com/semesterdesk/core/internal/ports"
)

const parsePrompt = `Parse this syllabus and extract the following information in JSON format:

{
  "course_code": "e.g., ARTH224",
  "course_title": "Full course name",
  "professor": "Professor name",
  "term": "e.g., Spring 2026",
  "assignments": [
    {
      "title": "Assignment name",
      "due_date": "YYYY-MM-DD format",
      "notes": "Any additional details",
      "type": "assignment|exam|paper|presentation|no-class"
    }
  ],
  "readings": [
    {
      "week": 1,
      "title": "Reading title",
      "source": "Book/article source",
      "pages": "Page numbers if available",
      "required": true
    }
  ]
}

Extract all assignments with dates, including exams, papers, presentations, and no-class days (holidays, breaks).
Extract all required readings organized by week if possible.
Use YYYY-MM-DD format for all dates.
Return ONLY the JSON, no markdown formatting or explanation.`

// parseMaxTokens is higher than the chat default; a dense semester
// schedule does not fit in 2000 tokens.
const parseMaxTokens = 4000

// courseColors is the palette new courses draw from on import.
var courseColors = []string{
	"#3B82F6",
	"#F59E0B",
	"#A855F7",
	"#14B8A6",
	"#EF4444",
	"#8B5CF6",
	"#10B981",
	"#F97316",
}

// SyllabusService turns uploaded syllabus PDFs into structured course
// data, and handles authenticated bulk loads of the same shape.
type SyllabusService struct {
	provider       ports.ModelProvider
	courseRepo     ports.CourseRepository
	assignmentRepo ports.AssignmentRepository
	readingRepo    ports.ReadingRepository
	model          string
	logger         *logger.Logger
}

// NewSyllabusService creates a new syllabus service.
func NewSyllabusService(provider ports.ModelProvider, courseRepo ports.CourseRepository, assignmentRepo ports.AssignmentRepository, readingRepo ports.ReadingRepository, model string, logger *logger.Logger) *SyllabusService {
	return &SyllabusService{
		provider:       provider,
		courseRepo:     courseRepo,
		assignmentRepo: assignmentRepo,
		readingRepo:    readingRepo,
		model:          model,
		logger:         logger,
	}
}

// Parse sends a syllabus PDF to the model and decodes the structured
// result. Nothing is persisted; the caller reviews the parse first.
func (s *SyllabusService) Parse(ctx context.Context, pdf []byte) (*ports.ParsedSyllabus, error) {
	if len(pdf) == 0 {
		return nil, fmt.Errorf("empty syllabus file")
	}

	resp, err := s.provider.CreateMessage(ctx, llm.MessagesRequest{
		Model:     s.model,
		MaxTokens: parseMaxTokens,
		Messages: []llm.Message{{
			Role: "user",
			Content: []llm.ContentBlock{
				{
					Type: llm.BlockDocument,
					Source: &llm.DocumentSource{
						Type:      "base64",
						MediaType: "application/pdf",
						Data:      base64.StdEncoding.EncodeToString(pdf),
					},
				},
				{Type: llm.BlockText, Text: parsePrompt},
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("parse syllabus: %w", err)
	}

	raw := stripCodeFences(resp.JoinedText())
	var parsed ports.ParsedSyllabus
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decode parsed syllabus: %w", err)
	}

	s.logger.Infow("Syllabus parsed",
		"course_code", parsed.CourseCode,
		"assignments", len(parsed.Assignments),
		"readings", len(parsed.Readings),
	)
	return &parsed, nil
}

// stripCodeFences removes markdown code fences the model sometimes
// wraps around JSON output despite instructions.
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// SaveParsed persists a reviewed parse: upserts the course and inserts
// its assignments and readings. No-class entries become calendar
// markers; everything else lands as scheduled.
func (s *SyllabusService) SaveParsed(ctx context.Context, parsed *ports.ParsedSyllabus) (*ports.SaveSyllabusResult, error) {
	courseID := parsed.CourseCode
	if courseID == "" {
		title := parsed.CourseTitle
		if len(title) > 6 {
			title = title[:6]
		}
		courseID = strings.ToUpper(title) + "-" + strings.ReplaceAll(parsed.Term, " ", "")
	}

	color := courseColors[rand.Intn(len(courseColors))]
	course := &entities.Course{
		ID:    courseID,
		Title: parsed.CourseTitle,
		Color: &color,
	}
	if parsed.Professor != "" {
		course.Professor = &parsed.Professor
	}
	if parsed.Term != "" {
		course.Term = &parsed.Term
	}
	if err := s.courseRepo.Upsert(ctx, course); err != nil {
		return nil, fmt.Errorf("upsert course: %w", err)
	}

	assignments := make([]*entities.Assignment, 0, len(parsed.Assignments))
	for _, pa := range parsed.Assignments {
		status := entities.StatusScheduled
		if pa.Type == "no-class" {
			status = entities.StatusNoClass
		}
		a := &entities.Assignment{
			ID:       uuid.New(),
			CourseID: courseID,
			Title:    pa.Title,
			DueDate:  pa.DueDate,
			Status:   status,
		}
		if pa.Notes != "" {
			notes := pa.Notes
			a.Notes = &notes
		}
		assignments = append(assignments, a)
	}
	if err := s.assignmentRepo.CreateBatch(ctx, assignments); err != nil {
		return nil, fmt.Errorf("insert assignments: %w", err)
	}

	readings := make([]*entities.Reading, 0, len(parsed.Readings))
	for _, pr := range parsed.Readings {
		r := &entities.Reading{
			ID:       uuid.New(),
			CourseID: courseID,
			Title:    pr.Title,
			Required: pr.Required,
		}
		if pr.Week > 0 {
			week := pr.Week
			r.Week = &week
		}
		if pr.Source != "" {
			source := pr.Source
			r.Source = &source
		}
		if pr.Pages != "" {
			pages := pr.Pages
			r.Pages = &pages
		}
		readings = append(readings, r)
	}
	if err := s.readingRepo.CreateBatch(ctx, readings); err != nil {
		return nil, fmt.Errorf("insert readings: %w", err)
	}

	s.logger.Infow("Syllabus saved",
		"course_id", courseID,
		"assignments", len(assignments),
		"readings", len(readings),
	)
	return &ports.SaveSyllabusResult{
		Success:          true,
		CourseID:         courseID,
		AssignmentsAdded: len(assignments),
		ReadingsAdded:    len(readings),
	}, nil
}

// BulkLoad ingests a prepared course payload. In replace mode (the
// default) the course's existing assignments and readings are dropped
// first, so reloading a semester is idempotent.
func (s *SyllabusService) BulkLoad(ctx context.Context, req ports.BulkLoadRequest) (*ports.BulkLoadResult, error) {
	if req.Course == nil || req.Course.ID == "" || req.Course.Title == "" {
		return nil, entities.ErrMissingCourse
	}
	if req.Mode == "" {
		req.Mode = "replace"
	}

	if err := s.courseRepo.Upsert(ctx, req.Course); err != nil {
		return nil, fmt.Errorf("upsert course: %w", err)
	}

	if req.Mode == "replace" {
		if err := s.assignmentRepo.DeleteByCourse(ctx, req.Course.ID); err != nil {
			return nil, fmt.Errorf("clear assignments: %w", err)
		}
		if err := s.readingRepo.DeleteByCourse(ctx, req.Course.ID); err != nil {
			return nil, fmt.Errorf("clear readings: %w", err)
		}
	}

	for _, a := range req.Assignments {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if a.CourseID == "" {
			a.CourseID = req.Course.ID
		}
		a.Status = entities.ParseAssignmentStatus(string(a.Status))
	}
	if err := s.assignmentRepo.CreateBatch(ctx, req.Assignments); err != nil {
		return nil, fmt.Errorf("insert assignments: %w", err)
	}

	for _, r := range req.Readings {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		if r.CourseID == "" {
			r.CourseID = req.Course.ID
		}
	}
	if err := s.readingRepo.CreateBatch(ctx, req.Readings); err != nil {
		return nil, fmt.Errorf("insert readings: %w", err)
	}

	s.logger.Infow("Bulk load complete",
		"course_id", req.Course.ID,
		"mode", req.Mode,
		"assignments", len(req.Assignments),
		"readings", len(req.Readings),
	)

	result := &ports.BulkLoadResult{OK: true}
	result.Inserted.Assignments = len(req.Assignments)
	result.Inserted.Readings = len(req.Readings)
	return result, nil
}
