package ports

import (
	"context"

	"github.com/semesterdesk/core/internal/adapters/llm"
	"github.com/semesterdesk/core/internal/domain/entities"
)

// ModelProvider is the language-model collaborator: one request, one
// response, with the stop reason distinguishing final text from a tool
// request. Implemented by the llm adapter; tests use a fake.
type ModelProvider interface {
	CreateMessage(ctx context.Context, req llm.MessagesRequest) (*llm.MessagesResponse, error)
}

// Request/response DTOs for the service layer.

type CreateAssignmentRequest struct {
	CourseID string  `json:"course_id" validate:"required"`
	Title    string  `json:"title" validate:"required"`
	DueDate  string  `json:"due_date" validate:"required"`
	Notes    *string `json:"notes"`
	Status   string  `json:"status"`
}

type UpdateAssignmentRequest struct {
	Title   *string `json:"title"`
	DueDate *string `json:"due_date"`
	Notes   *string `json:"notes"`
	Status  *string `json:"status"`
}

type CreateTodoRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
}

type UpdateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
	Completed   *bool   `json:"completed"`
}

type CreateNoteRequest struct {
	Kind    string  `json:"kind"`
	RefID   *string `json:"ref_id"`
	Content string  `json:"content" validate:"required"`
}

type UpdateNoteRequest struct {
	Content *string `json:"content"`
}

type CreateStudySessionRequest struct {
	CourseID        *string `json:"course_id"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0"`
}

type UpsertGradeRequest struct {
	CourseID       string   `json:"course_id" validate:"required"`
	Credits        int      `json:"credits" validate:"gte=0"`
	CurrentGrade   *float64 `json:"current_grade"`
	ProjectedGrade *float64 `json:"projected_grade"`
}

// ParsedSyllabus is the structured result of parsing a syllabus PDF.
type ParsedSyllabus struct {
	CourseCode  string             `json:"course_code"`
	CourseTitle string             `json:"course_title"`
	Professor   string             `json:"professor"`
	Term        string             `json:"term"`
	Assignments []ParsedAssignment `json:"assignments"`
	Readings    []ParsedReading    `json:"readings"`
}

type ParsedAssignment struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
	Notes   string `json:"notes"`
	Type    string `json:"type"`
}

type ParsedReading struct {
	Week     int    `json:"week"`
	Title    string `json:"title"`
	Source   string `json:"source"`
	Pages    string `json:"pages"`
	Required bool   `json:"required"`
}

// SaveSyllabusResult reports what a syllabus import wrote.
type SaveSyllabusResult struct {
	Success          bool   `json:"success"`
	CourseID         string `json:"courseId"`
	AssignmentsAdded int    `json:"assignmentsAdded"`
	ReadingsAdded    int    `json:"readingsAdded"`
}

// BulkLoadRequest is the body of the shared-secret bulk loader.
type BulkLoadRequest struct {
	Mode        string                 `json:"mode"`
	Course      *entities.Course       `json:"course"`
	Assignments []*entities.Assignment `json:"assignments"`
	Readings    []*entities.Reading    `json:"readings"`
}

// BulkLoadResult reports what the bulk loader inserted.
type BulkLoadResult struct {
	OK       bool `json:"ok"`
	Inserted struct {
		Assignments int `json:"assignments"`
		Readings    int `json:"readings"`
	} `json:"inserted"`
}

// DigestSummary is the weekly digest payload: week-ahead assignments
// and week-behind study time, plus the rendered HTML body.
type DigestSummary struct {
	Success          bool   `json:"success"`
	AssignmentsCount int    `json:"assignmentsCount"`
	StudyMinutes     int    `json:"studyMinutes"`
	HTML             string `json:"previewHTML,omitempty"`
}

// GPAReport aggregates grade entries into a 4.0-scale average.
type GPAReport struct {
	GPA          float64               `json:"gpa"`
	ProjectedGPA float64               `json:"projected_gpa"`
	TotalCredits int                   `json:"total_credits"`
	Entries      []*entities.CourseGrade `json:"entries"`
}
