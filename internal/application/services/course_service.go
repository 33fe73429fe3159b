package services

import (
	"context"
	"fmt"

	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
	"github.com/semesterdesk/core/internal/ports"
)

// CourseService handles course, reading-list, and grade operations.
type CourseService struct {
	courseRepo  ports.CourseRepository
	readingRepo ports.ReadingRepository
	gradeRepo   ports.GradeRepository
	logger      *logger.Logger
}

// NewCourseService creates a new course service.
func NewCourseService(courseRepo ports.CourseRepository, readingRepo ports.ReadingRepository, gradeRepo ports.GradeRepository, logger *logger.Logger) *CourseService {
	return &CourseService{
		courseRepo:  courseRepo,
		readingRepo: readingRepo,
		gradeRepo:   gradeRepo,
		logger:      logger,
	}
}

// ListCourses retrieves all courses.
func (s *CourseService) ListCourses(ctx context.Context) ([]*entities.Course, error) {
	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// GetCourse retrieves a course by its code.
func (s *CourseService) GetCourse(ctx context.Context, id string) (*entities.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

// ListReadings retrieves the reading list for a course.
func (s *CourseService) ListReadings(ctx context.Context, courseID string) ([]*entities.Reading, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, fmt.Errorf("course lookup: %w", err)
	}
	readings, err := s.readingRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	return readings, nil
}

// UpsertGrade records grades for one course, keyed by course code.
func (s *CourseService) UpsertGrade(ctx context.Context, req ports.UpsertGradeRequest) (*entities.CourseGrade, error) {
	if _, err := s.courseRepo.GetByID(ctx, req.CourseID); err != nil {
		return nil, fmt.Errorf("course lookup: %w", err)
	}

	credits := req.Credits
	if credits == 0 {
		credits = 3
	}
	grade := &entities.CourseGrade{
		CourseID:       req.CourseID,
		Credits:        credits,
		CurrentGrade:   req.CurrentGrade,
		ProjectedGrade: req.ProjectedGrade,
	}
	if err := s.gradeRepo.Upsert(ctx, grade); err != nil {
		return nil, fmt.Errorf("failed to upsert grade: %w", err)
	}

	s.logger.Infow("Grade updated", "course_id", req.CourseID)
	return grade, nil
}

// ListGrades retrieves all grade entries.
func (s *CourseService) ListGrades(ctx context.Context) ([]*entities.CourseGrade, error) {
	grades, err := s.gradeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// GPA computes the credit-weighted 4.0-scale average of current and
// projected grades. Entries without a grade are skipped.
func (s *CourseService) GPA(ctx context.Context) (*ports.GPAReport, error) {
	grades, err := s.gradeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}

	report := &ports.GPAReport{Entries: grades}
	var currentPoints, projectedPoints float64
	var currentCredits, projectedCredits int
	for _, g := range grades {
		if g.CurrentGrade != nil {
			currentPoints += entities.GradePoints(*g.CurrentGrade) * float64(g.Credits)
			currentCredits += g.Credits
		}
		if g.ProjectedGrade != nil {
			projectedPoints += entities.GradePoints(*g.ProjectedGrade) * float64(g.Credits)
			projectedCredits += g.Credits
		}
		report.TotalCredits += g.Credits
	}
	if currentCredits > 0 {
		report.GPA = currentPoints / float64(currentCredits)
	}
	if projectedCredits > 0 {
		report.ProjectedGPA = projectedPoints / float64(projectedCredits)
	}
	return report, nil
}
