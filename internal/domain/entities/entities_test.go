package entities

import (
	"testing"
	"time"
)

func TestParseAssignmentStatusTotal(t *testing.T) {
	cases := map[string]AssignmentStatus{
		"todo":        StatusTodo,
		"in-progress": StatusInProgress,
		"done":        StatusDone,
		"scheduled":   StatusScheduled,
		"no-class":    StatusNoClass,
		"":            StatusTodo,
		"DONE":        StatusTodo,
		"finished":    StatusTodo,
	}
	for input, want := range cases {
		if got := ParseAssignmentStatus(input); got != want {
			t.Fatalf("ParseAssignmentStatus(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseTodoCategoryAndPriority(t *testing.T) {
	if got := ParseTodoCategory("errands"); got != CategoryErrands {
		t.Fatalf("expected errands, got %q", got)
	}
	if got := ParseTodoCategory("gaming"); got != CategoryGeneral {
		t.Fatalf("unknown category must default to general, got %q", got)
	}
	if got := ParseTodoPriority("high"); got != PriorityHigh {
		t.Fatalf("expected high, got %q", got)
	}
	if got := ParseTodoPriority("urgent"); got != PriorityMedium {
		t.Fatalf("unknown priority must default to medium, got %q", got)
	}
}

func TestParseNoteKind(t *testing.T) {
	if got := ParseNoteKind("course"); got != NoteKindCourse {
		t.Fatalf("expected course, got %q", got)
	}
	if got := ParseNoteKind("sticky"); got != NoteKindGeneral {
		t.Fatalf("unknown kind must default to general, got %q", got)
	}
}

func TestAssignmentDueOn(t *testing.T) {
	a := Assignment{DueDate: "2025-09-14"}
	d, ok := a.DueOn(time.UTC)
	if !ok {
		t.Fatalf("expected parseable date")
	}
	if d.Year() != 2025 || d.Month() != time.September || d.Day() != 14 {
		t.Fatalf("unexpected date %v", d)
	}

	for _, bad := range []string{"", "soon", "14-09-2025", "2025-13-40"} {
		a := Assignment{DueDate: bad}
		if _, ok := a.DueOn(time.UTC); ok {
			t.Fatalf("expected %q to be unparseable", bad)
		}
	}
}

func TestTodoIsOverdue(t *testing.T) {
	today := time.Date(2025, 9, 16, 0, 0, 0, 0, time.UTC)
	due := "2025-09-10"
	todo := Todo{DueDate: &due}
	if !todo.IsOverdue(today, time.UTC) {
		t.Fatalf("expected overdue")
	}
	todo.Completed = true
	if todo.IsOverdue(today, time.UTC) {
		t.Fatalf("completed todo cannot be overdue")
	}
	none := Todo{}
	if none.IsOverdue(today, time.UTC) {
		t.Fatalf("todo without due date cannot be overdue")
	}
}

func TestGradePoints(t *testing.T) {
	cases := []struct {
		grade float64
		want  float64
	}{
		{96, 4.0},
		{93, 4.0},
		{91, 3.7},
		{85, 3.0},
		{72, 1.7},
		{61, 0.7},
		{40, 0.0},
	}
	for _, tc := range cases {
		if got := GradePoints(tc.grade); got != tc.want {
			t.Fatalf("GradePoints(%v) = %v, want %v", tc.grade, got, tc.want)
		}
	}
}
