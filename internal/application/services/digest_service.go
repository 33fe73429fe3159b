package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/domain/schedule"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
	"github.com/semesterdesk/core/internal/ports"
)

const digestTemplate = `<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: 'Georgia', serif; background: #f7efe2; color: #1a1209; padding: 20px; }
    .container { max-width: 600px; margin: 0 auto; background: white; border-radius: 16px; padding: 30px; }
    h1 { color: #2d4a3e; border-bottom: 2px solid #c4961f; padding-bottom: 10px; }
    h2 { color: #3d2e1a; font-size: 18px; margin-top: 30px; }
    .assignment { padding: 15px; margin: 10px 0; border-left: 4px solid #8b6914; border-radius: 8px; background: rgba(196,150,31,0.06); }
    .date { font-weight: bold; color: #8b6914; }
    .stat { display: inline-block; padding: 10px 20px; background: #2d4a3e; color: #e8c96a; border-radius: 8px; margin: 5px; }
    .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #d4c4a8; font-size: 12px; color: #6b5a3e; text-align: center; }
  </style>
</head>
<body>
  <div class="container">
    <h1>&#128218; Your Weekly Study Digest</h1>
    <p style="font-style: italic; color: #6b5a3e;">Frederick's weekly summary</p>

    <h2>&#128197; Coming Up This Week</h2>
    {{if .Assignments}}{{range .Assignments}}
    <div class="assignment"{{with .CourseColor}} style="border-color: {{.}}"{{end}}>
      <div class="date">{{.DueLabel}}</div>
      <div><strong>{{.Title}}</strong></div>
      <div style="font-size: 13px; color: #6b5a3e;">{{.CourseTitle}}</div>
    </div>
    {{end}}{{else}}
    <p>No assignments due this week! &#127881; Time to get ahead or take a well-deserved break.</p>
    {{end}}

    <h2>&#9201; Last Week's Study Stats</h2>
    <div>
      <span class="stat">{{.StudyHours}}h {{.StudyRemMinutes}}m studied</span>
      <span class="stat">{{.SessionCount}} focus sessions</span>
    </div>

    <h2>&#128173; Frederick's Note</h2>
    <p style="font-style: italic; background: rgba(61,107,88,0.06); padding: 15px; border-radius: 8px; border-left: 4px solid #3d6b58;">
      &quot;{{.Quote}}&quot;
    </p>

    <div class="footer">
      <p>&#128062; With wisdom from Frederick, Chief Morale Officer</p>
    </div>
  </div>
</body>
</html>
`

type digestAssignment struct {
	Title       string
	DueLabel    string
	CourseTitle string
	CourseColor string
}

type digestData struct {
	Assignments     []digestAssignment
	StudyHours      int
	StudyRemMinutes int
	SessionCount    int
	Quote           string
}

// DigestService builds the weekly summary email: what is due in the
// next seven days and how much focused study happened in the last
// seven.
type DigestService struct {
	assignmentRepo ports.AssignmentRepository
	studyRepo      ports.StudySessionRepository
	calendar       *schedule.Calendar
	tmpl           *template.Template
	logger         *logger.Logger
	now            func() time.Time
}

// NewDigestService creates a new digest service.
func NewDigestService(assignmentRepo ports.AssignmentRepository, studyRepo ports.StudySessionRepository, calendar *schedule.Calendar, logger *logger.Logger) *DigestService {
	return &DigestService{
		assignmentRepo: assignmentRepo,
		studyRepo:      studyRepo,
		calendar:       calendar,
		tmpl:           template.Must(template.New("digest").Parse(digestTemplate)),
		logger:         logger,
		now:            time.Now,
	}
}

// Build assembles the digest and renders its HTML body. Sending is the
// caller's concern; the summary carries the rendered preview.
func (s *DigestService) Build(ctx context.Context) (*ports.DigestSummary, error) {
	today := s.calendar.DateOf(s.now())
	weekAhead := today.AddDate(0, 0, 7)
	weekBehind := today.AddDate(0, 0, -7)

	start := today.Format(entities.DateLayout)
	end := weekAhead.Format(entities.DateLayout)
	done := entities.StatusDone
	assignments, err := s.assignmentRepo.List(ctx, ports.AssignmentFilter{
		DueAfter:  &start,
		DueBefore: &end,
		NotStatus: &done,
	})
	if err != nil {
		return nil, fmt.Errorf("digest assignments: %w", err)
	}
	assignments = schedule.SortChronological(assignments)

	sessions, err := s.studyRepo.ListSince(ctx, weekBehind)
	if err != nil {
		return nil, fmt.Errorf("digest sessions: %w", err)
	}
	totalMinutes, err := s.studyRepo.TotalMinutesSince(ctx, weekBehind)
	if err != nil {
		return nil, fmt.Errorf("digest study minutes: %w", err)
	}

	data := digestData{
		StudyHours:      totalMinutes / 60,
		StudyRemMinutes: totalMinutes % 60,
		SessionCount:    len(sessions),
		Quote:           fredQuote(len(assignments)),
	}
	for _, a := range assignments {
		row := digestAssignment{Title: a.Title}
		if due, ok := a.DueOn(s.calendar.Location()); ok {
			row.DueLabel = due.Format("Mon, Jan 2")
		} else {
			row.DueLabel = a.DueDate
		}
		if a.Course != nil {
			row.CourseTitle = a.Course.Title
			if a.Course.Color != nil {
				row.CourseColor = *a.Course.Color
			}
		}
		data.Assignments = append(data.Assignments, row)
	}

	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("render digest: %w", err)
	}

	s.logger.Infow("Digest built",
		"assignments", len(assignments),
		"study_minutes", totalMinutes,
		"sessions", len(sessions),
	)
	return &ports.DigestSummary{
		Success:          true,
		AssignmentsCount: len(assignments),
		StudyMinutes:     totalMinutes,
		HTML:             body.String(),
	}, nil
}

// fredQuote scales Frederick's encouragement to the size of the week.
func fredQuote(assignmentCount int) string {
	switch {
	case assignmentCount == 0:
		return "A light week ahead, meow! Perfect time to explore beyond the syllabus or simply rest your paws."
	case assignmentCount <= 3:
		return "A manageable week ahead. Pace yourself, and remember that even the sharpest claws need regular sharpening."
	default:
		return "Quite the busy week! Break it into smaller mice to catch. One task at a time, one paw in front of the other."
	}
}
