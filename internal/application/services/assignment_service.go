package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/domain/schedule"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
	"github.com/semesterdesk/core/internal/ports"
)

// AssignmentService handles assignment reads, writes, and the windowed
// display views.
type AssignmentService struct {
	assignmentRepo ports.AssignmentRepository
	courseRepo     ports.CourseRepository
	calendar       *schedule.Calendar
	logger         *logger.Logger
}

// NewAssignmentService creates a new assignment service.
func NewAssignmentService(assignmentRepo ports.AssignmentRepository, courseRepo ports.CourseRepository, calendar *schedule.Calendar, logger *logger.Logger) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		courseRepo:     courseRepo,
		calendar:       calendar,
		logger:         logger,
	}
}

// CreateAssignment creates a new assignment. The due date must be a
// valid calendar date; the status string is coerced into the closed
// set.
func (s *AssignmentService) CreateAssignment(ctx context.Context, req ports.CreateAssignmentRequest) (*entities.Assignment, error) {
	if _, err := time.Parse(entities.DateLayout, req.DueDate); err != nil {
		return nil, fmt.Errorf("%w: %q", entities.ErrInvalidDueDate, req.DueDate)
	}
	if _, err := s.courseRepo.GetByID(ctx, req.CourseID); err != nil {
		return nil, fmt.Errorf("course lookup: %w", err)
	}

	assignment := &entities.Assignment{
		ID:       uuid.New(),
		CourseID: req.CourseID,
		Title:    req.Title,
		DueDate:  req.DueDate,
		Notes:    req.Notes,
		Status:   entities.ParseAssignmentStatus(req.Status),
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Infow("Assignment created", "assignment_id", assignment.ID, "course_id", assignment.CourseID, "due_date", assignment.DueDate)
	return assignment, nil
}

// GetAssignment retrieves an assignment by ID.
func (s *AssignmentService) GetAssignment(ctx context.Context, id uuid.UUID) (*entities.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return assignment, nil
}

// UpdateAssignment applies a partial update.
func (s *AssignmentService) UpdateAssignment(ctx context.Context, id uuid.UUID, req ports.UpdateAssignmentRequest) (*entities.Assignment, error) {
	existing, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}

	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.DueDate != nil {
		if _, err := time.Parse(entities.DateLayout, *req.DueDate); err != nil {
			return nil, fmt.Errorf("%w: %q", entities.ErrInvalidDueDate, *req.DueDate)
		}
		existing.DueDate = *req.DueDate
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}
	if req.Status != nil {
		existing.Status = entities.ParseAssignmentStatus(*req.Status)
	}

	if err := s.assignmentRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}

	s.logger.Infow("Assignment updated", "assignment_id", id, "status", existing.Status)
	return existing, nil
}

// UpdateStatus sets the status (and optionally notes) of an assignment.
func (s *AssignmentService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, notes *string) (*entities.Assignment, error) {
	coerced := entities.ParseAssignmentStatus(status)
	if err := s.assignmentRepo.UpdateStatus(ctx, id, coerced, notes); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get updated assignment: %w", err)
	}

	s.logger.Infow("Assignment status updated", "assignment_id", id, "status", coerced)
	return assignment, nil
}

// DeleteAssignment removes an assignment permanently.
func (s *AssignmentService) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	if err := s.assignmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	s.logger.Infow("Assignment deleted", "assignment_id", id)
	return nil
}

// ListWindow fetches all assignments (optionally narrowed by course or
// status) and applies a display window. Records with malformed due
// dates are logged and excluded from date-bounded windows but remain
// visible under the all window.
func (s *AssignmentService) ListWindow(ctx context.Context, window schedule.Window, courseID *string, status *entities.AssignmentStatus) ([]*entities.Assignment, error) {
	assignments, err := s.assignmentRepo.List(ctx, ports.AssignmentFilter{CourseID: courseID, Status: status})
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	kept, malformed := s.calendar.Filter(assignments, window, time.Now())
	if len(malformed) > 0 {
		s.logger.Warnw("Assignments with unparseable due dates excluded from window",
			"window", window, "assignment_ids", malformed)
	}
	return schedule.SortChronological(kept), nil
}

// MonthView groups a month's assignments into the 42-cell calendar
// grid keyed by due date.
func (s *AssignmentService) MonthView(ctx context.Context, year int, month time.Month) ([]time.Time, map[string][]*entities.Assignment, error) {
	grid := s.calendar.MonthGrid(year, month)
	first, last := grid[0], grid[len(grid)-1]

	after := first.Format(entities.DateLayout)
	before := last.Format(entities.DateLayout)
	assignments, err := s.assignmentRepo.List(ctx, ports.AssignmentFilter{DueAfter: &after, DueBefore: &before})
	if err != nil {
		return nil, nil, fmt.Errorf("list assignments for month: %w", err)
	}

	byDay := s.calendar.GroupByDay(assignments)
	for day := range byDay {
		byDay[day] = schedule.SortChronological(byDay[day])
	}
	return grid, byDay, nil
}

// Urgent returns undone assignments due within the urgency horizon,
// soonest first.
func (s *AssignmentService) Urgent(ctx context.Context) ([]*entities.Assignment, error) {
	assignments, err := s.assignmentRepo.List(ctx, ports.AssignmentFilter{})
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	now := time.Now()
	var urgent []*entities.Assignment
	for _, a := range assignments {
		if s.calendar.IsUrgent(a, now) {
			urgent = append(urgent, a)
		}
	}
	return schedule.SortChronological(urgent), nil
}
