package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/semesterdesk/core/internal/domain/entities"
)

// CourseRepository defines the interface for course data operations.
// Courses are keyed by their human-readable code, not a surrogate id.
type CourseRepository interface {
	Upsert(ctx context.Context, course *entities.Course) error
	GetByID(ctx context.Context, id string) (*entities.Course, error)
	List(ctx context.Context) ([]*entities.Course, error)
	Update(ctx context.Context, course *entities.Course) error
}

// AssignmentRepository defines the interface for assignment data
// operations.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *entities.Assignment) error
	CreateBatch(ctx context.Context, assignments []*entities.Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Assignment, error)
	Update(ctx context.Context, assignment *entities.Assignment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.AssignmentStatus, notes *string) error
	List(ctx context.Context, filter AssignmentFilter) ([]*entities.Assignment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByCourse(ctx context.Context, courseID string) error
}

// TodoRepository defines the interface for todo data operations.
type TodoRepository interface {
	Create(ctx context.Context, todo *entities.Todo) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Todo, error)
	Update(ctx context.Context, todo *entities.Todo) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter TodoFilter) ([]*entities.Todo, error)
}

// ReadingRepository defines the interface for reading-list data
// operations. Readings only change through bulk import.
type ReadingRepository interface {
	CreateBatch(ctx context.Context, readings []*entities.Reading) error
	ListByCourse(ctx context.Context, courseID string) ([]*entities.Reading, error)
	DeleteByCourse(ctx context.Context, courseID string) error
}

// NoteRepository defines the interface for note data operations.
type NoteRepository interface {
	Create(ctx context.Context, note *entities.Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Note, error)
	Update(ctx context.Context, note *entities.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter NoteFilter) ([]*entities.Note, error)
}

// StudySessionRepository defines the interface for focus-timer session
// data operations.
type StudySessionRepository interface {
	Create(ctx context.Context, session *entities.StudySession) error
	ListSince(ctx context.Context, since time.Time) ([]*entities.StudySession, error)
	TotalMinutesSince(ctx context.Context, since time.Time) (int, error)
}

// GradeRepository defines the interface for course-grade data
// operations, upserted by course key.
type GradeRepository interface {
	Upsert(ctx context.Context, grade *entities.CourseGrade) error
	List(ctx context.Context) ([]*entities.CourseGrade, error)
}

// Filter types for repository queries
type AssignmentFilter struct {
	CourseID  *string
	Status    *entities.AssignmentStatus
	DueAfter  *string
	DueBefore *string
	NotStatus *entities.AssignmentStatus
	Limit     int
}

type TodoFilter struct {
	Completed *bool
	Category  *entities.TodoCategory
	Priority  *entities.TodoPriority
	Limit     int
}

type NoteFilter struct {
	Kind  *entities.NoteKind
	RefID *string
	Limit int
}
