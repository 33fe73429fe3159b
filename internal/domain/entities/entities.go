package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrTodoNotFound       = errors.New("todo not found")
	ErrReadingNotFound    = errors.New("reading not found")
	ErrNoteNotFound       = errors.New("note not found")
	ErrGradeNotFound      = errors.New("grade not found")
	ErrInvalidDueDate     = errors.New("invalid due date")
	ErrMissingCourse      = errors.New("missing course id or title")
	ErrUnauthorized       = errors.New("unauthorized")
)

// DateLayout is the wire format for all date-only values. Assignments
// store their due date as a plain YYYY-MM-DD string; parsing happens in
// the schedule package.
const DateLayout = "2006-01-02"

// Enums and types
type AssignmentStatus string

const (
	StatusTodo       AssignmentStatus = "todo"
	StatusInProgress AssignmentStatus = "in-progress"
	StatusDone       AssignmentStatus = "done"
	StatusScheduled  AssignmentStatus = "scheduled"
	StatusNoClass    AssignmentStatus = "no-class"
)

// ParseAssignmentStatus coerces any stored value into the closed status
// set. Unrecognized or missing values map to "todo"; it never fails.
func ParseAssignmentStatus(s string) AssignmentStatus {
	switch AssignmentStatus(s) {
	case StatusInProgress, StatusDone, StatusScheduled, StatusNoClass:
		return AssignmentStatus(s)
	default:
		return StatusTodo
	}
}

func (s AssignmentStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusScheduled, StatusNoClass:
		return true
	default:
		return false
	}
}

type TodoCategory string

const (
	CategorySchool   TodoCategory = "school"
	CategoryPersonal TodoCategory = "personal"
	CategoryErrands  TodoCategory = "errands"
	CategoryWork     TodoCategory = "work"
	CategoryHealth   TodoCategory = "health"
	CategoryGeneral  TodoCategory = "general"
)

// ParseTodoCategory coerces any stored value into the closed category
// set, defaulting to "general".
func ParseTodoCategory(s string) TodoCategory {
	switch TodoCategory(s) {
	case CategorySchool, CategoryPersonal, CategoryErrands, CategoryWork, CategoryHealth:
		return TodoCategory(s)
	default:
		return CategoryGeneral
	}
}

type TodoPriority string

const (
	PriorityLow    TodoPriority = "low"
	PriorityMedium TodoPriority = "medium"
	PriorityHigh   TodoPriority = "high"
)

// ParseTodoPriority coerces any stored value into the closed priority
// set, defaulting to "medium".
func ParseTodoPriority(s string) TodoPriority {
	switch TodoPriority(s) {
	case PriorityLow, PriorityHigh:
		return TodoPriority(s)
	default:
		return PriorityMedium
	}
}

type NoteKind string

const (
	NoteKindAssignment NoteKind = "assignment"
	NoteKindCourse     NoteKind = "course"
	NoteKindGeneral    NoteKind = "general"
)

// ParseNoteKind coerces any stored value into the closed kind set,
// defaulting to "general".
func ParseNoteKind(s string) NoteKind {
	switch NoteKind(s) {
	case NoteKindAssignment, NoteKindCourse:
		return NoteKind(s)
	default:
		return NoteKindGeneral
	}
}

// Course represents one course in the current semester. The ID is a
// stable human-readable key such as "ARTH224-S26", assigned at import.
type Course struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Professor *string   `json:"professor" db:"professor"`
	Color     *string   `json:"color" db:"color"`
	Term      *string   `json:"term" db:"term"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Assignment represents a dated piece of coursework. Records with
// unparseable due dates stay visible in unfiltered views but are
// excluded from date-bounded windows.
type Assignment struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	CourseID  string           `json:"course_id" db:"course_id"`
	Title     string           `json:"title" db:"title"`
	DueDate   string           `json:"due_date" db:"due_date"`
	Notes     *string          `json:"notes" db:"notes"`
	Status    AssignmentStatus `json:"status" db:"status"`
	Course    *Course          `json:"course,omitempty"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

// IsNoClass reports whether the record is a non-assignment calendar
// marker (holiday, cancelled session).
func (a *Assignment) IsNoClass() bool {
	return a.Status == StatusNoClass
}

// IsDone reports whether the assignment is complete.
func (a *Assignment) IsDone() bool {
	return a.Status == StatusDone
}

// DueOn parses the due date in the given zone. The bool result is false
// for empty or malformed date strings.
func (a *Assignment) DueOn(loc *time.Location) (time.Time, bool) {
	d, err := time.ParseInLocation(DateLayout, a.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Todo represents a to-do list item outside the assignment workflow.
type Todo struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Description *string      `json:"description" db:"description"`
	Category    TodoCategory `json:"category" db:"category"`
	Priority    TodoPriority `json:"priority" db:"priority"`
	DueDate     *string      `json:"due_date" db:"due_date"`
	Completed   bool         `json:"completed" db:"completed"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// IsOverdue reports whether an incomplete todo's due date has passed.
func (t *Todo) IsOverdue(today time.Time, loc *time.Location) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	due, err := time.ParseInLocation(DateLayout, *t.DueDate, loc)
	if err != nil {
		return false
	}
	return due.Before(today)
}

// Reading represents one entry on a course reading list, imported in
// bulk from a parsed syllabus.
type Reading struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	Week      *int      `json:"week" db:"week"`
	Title     string    `json:"title" db:"title"`
	Source    *string   `json:"source" db:"source"`
	Pages     *string   `json:"pages" db:"pages"`
	URL       *string   `json:"url" db:"url"`
	Required  bool      `json:"required" db:"required"`
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Note is free-text annotation attached to an assignment, a course, or
// nothing in particular.
type Note struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Kind      NoteKind  `json:"kind" db:"kind"`
	RefID     *string   `json:"ref_id" db:"ref_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StudySession records one completed focus-timer block.
type StudySession struct {
	ID              uuid.UUID `json:"id" db:"id"`
	CourseID        *string   `json:"course_id" db:"course_id"`
	StartedAt       time.Time `json:"started_at" db:"started_at"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
}

// CourseGrade tracks current and projected percentage grades per course.
type CourseGrade struct {
	CourseID       string    `json:"course_id" db:"course_id"`
	Credits        int       `json:"credits" db:"credits"`
	CurrentGrade   *float64  `json:"current_grade" db:"current_grade"`
	ProjectedGrade *float64  `json:"projected_grade" db:"projected_grade"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// GradePoints maps a percentage grade to 4.0-scale quality points.
func GradePoints(grade float64) float64 {
	switch {
	case grade >= 93:
		return 4.0
	case grade >= 90:
		return 3.7
	case grade >= 87:
		return 3.3
	case grade >= 83:
		return 3.0
	case grade >= 80:
		return 2.7
	case grade >= 77:
		return 2.3
	case grade >= 73:
		return 2.0
	case grade >= 70:
		return 1.7
	case grade >= 67:
		return 1.3
	case grade >= 63:
		return 1.0
	case grade >= 60:
		return 0.7
	default:
		return 0.0
	}
}

// ChatRole tags a chat message. The conversation is ephemeral; nothing
// here is persisted.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)
