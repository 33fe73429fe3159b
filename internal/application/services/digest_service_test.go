package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/domain/schedule"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
)

type fakeStudyRepo struct {
	sessions []*entities.StudySession
}

func (r *fakeStudyRepo) Create(_ context.Context, s *entities.StudySession) error {
	r.sessions = append(r.sessions, s)
	return nil
}

func (r *fakeStudyRepo) ListSince(_ context.Context, since time.Time) ([]*entities.StudySession, error) {
	var out []*entities.StudySession
	for _, s := range r.sessions {
		if !s.StartedAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeStudyRepo) TotalMinutesSince(ctx context.Context, since time.Time) (int, error) {
	sessions, _ := r.ListSince(ctx, since)
	total := 0
	for _, s := range sessions {
		total += s.DurationMinutes
	}
	return total, nil
}

func newTestDigestService(assignments *fakeAssignmentRepo, study *fakeStudyRepo) *DigestService {
	svc := NewDigestService(assignments, study, schedule.NewCalendar(time.UTC), logger.NewNop())
	svc.now = func() time.Time {
		return time.Date(2025, time.September, 16, 18, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestDigestBuild(t *testing.T) {
	color := "#3B82F6"
	inWindow := &entities.Assignment{
		ID: uuid.New(), CourseID: "ARTH224-S26", Title: "Gallery response",
		DueDate: "2025-09-19", Status: entities.StatusTodo,
		Course: &entities.Course{ID: "ARTH224-S26", Title: "Modern Art", Color: &color},
	}
	doneInWindow := &entities.Assignment{
		ID: uuid.New(), CourseID: "ARTH224-S26", Title: "Quiz 1",
		DueDate: "2025-09-18", Status: entities.StatusDone,
	}
	farOut := &entities.Assignment{
		ID: uuid.New(), CourseID: "ARTH224-S26", Title: "Final paper",
		DueDate: "2025-12-10", Status: entities.StatusTodo,
	}
	assignments := newFakeAssignmentRepo(inWindow, doneInWindow, farOut)

	study := &fakeStudyRepo{sessions: []*entities.StudySession{
		{ID: uuid.New(), StartedAt: time.Date(2025, time.September, 12, 14, 0, 0, 0, time.UTC), DurationMinutes: 50},
		{ID: uuid.New(), StartedAt: time.Date(2025, time.September, 14, 9, 0, 0, 0, time.UTC), DurationMinutes: 85},
		{ID: uuid.New(), StartedAt: time.Date(2025, time.August, 1, 9, 0, 0, 0, time.UTC), DurationMinutes: 200},
	}}

	summary, err := newTestDigestService(assignments, study).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !summary.Success {
		t.Error("summary not marked successful")
	}
	if summary.AssignmentsCount != 1 {
		t.Errorf("AssignmentsCount = %d, want 1 (done and far-out excluded)", summary.AssignmentsCount)
	}
	if summary.StudyMinutes != 135 {
		t.Errorf("StudyMinutes = %d, want 135 (old session excluded)", summary.StudyMinutes)
	}
	if !strings.Contains(summary.HTML, "Gallery response") {
		t.Error("HTML missing the upcoming assignment")
	}
	if strings.Contains(summary.HTML, "Final paper") {
		t.Error("HTML contains an assignment outside the week window")
	}
	if !strings.Contains(summary.HTML, "2h 15m studied") {
		t.Error("HTML missing the study stat")
	}
	if !strings.Contains(summary.HTML, "2 focus sessions") {
		t.Error("HTML missing the session count")
	}
	if !strings.Contains(summary.HTML, "Modern Art") {
		t.Error("HTML missing the course title")
	}
}

func TestDigestEmptyWeek(t *testing.T) {
	summary, err := newTestDigestService(newFakeAssignmentRepo(), &fakeStudyRepo{}).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if summary.AssignmentsCount != 0 || summary.StudyMinutes != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if !strings.Contains(summary.HTML, "No assignments due this week") {
		t.Error("HTML missing the empty-week message")
	}
	if !strings.Contains(summary.HTML, "A light week ahead") {
		t.Error("HTML missing the light-week quote")
	}
}

func TestFredQuoteScales(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "A light week"},
		{2, "A manageable week"},
		{3, "A manageable week"},
		{4, "Quite the busy week"},
	}
	for _, tt := range tests {
		if got := fredQuote(tt.count); !strings.Contains(got, tt.want) {
			t.Errorf("fredQuote(%d) = %q, want it to contain %q", tt.count, got, tt.want)
		}
	}
}
