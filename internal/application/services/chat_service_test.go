package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/semesterdesk/core/internal/adapters/llm"
	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/domain/schedule"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
	"github.com/semesterdesk/core/internal/ports"
)

type fakeProvider struct {
	responses []*llm.MessagesResponse
	requests  []llm.MessagesRequest
	err       error
}

func (p *fakeProvider) CreateMessage(_ context.Context, req llm.MessagesRequest) (*llm.MessagesResponse, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	if len(p.responses) == 0 {
		return nil, errors.New("fake provider: no response queued")
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

type fakeAssignmentRepo struct {
	assignments map[uuid.UUID]*entities.Assignment
	failWith    error
}

func newFakeAssignmentRepo(assignments ...*entities.Assignment) *fakeAssignmentRepo {
	repo := &fakeAssignmentRepo{assignments: map[uuid.UUID]*entities.Assignment{}}
	for _, a := range assignments {
		repo.assignments[a.ID] = a
	}
	return repo
}

func (r *fakeAssignmentRepo) Create(_ context.Context, a *entities.Assignment) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.assignments[a.ID] = a
	return nil
}

func (r *fakeAssignmentRepo) CreateBatch(ctx context.Context, assignments []*entities.Assignment) error {
	for _, a := range assignments {
		if err := r.Create(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Assignment, error) {
	a, ok := r.assignments[id]
	if !ok {
		return nil, entities.ErrAssignmentNotFound
	}
	return a, nil
}

func (r *fakeAssignmentRepo) Update(_ context.Context, a *entities.Assignment) error {
	if _, ok := r.assignments[a.ID]; !ok {
		return entities.ErrAssignmentNotFound
	}
	r.assignments[a.ID] = a
	return nil
}

func (r *fakeAssignmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entities.AssignmentStatus, notes *string) error {
	a, ok := r.assignments[id]
	if !ok {
		return entities.ErrAssignmentNotFound
	}
	a.Status = status
	if notes != nil {
		a.Notes = notes
	}
	return nil
}

func (r *fakeAssignmentRepo) List(_ context.Context, filter ports.AssignmentFilter) ([]*entities.Assignment, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []*entities.Assignment
	for _, a := range r.assignments {
		if filter.CourseID != nil && a.CourseID != *filter.CourseID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.NotStatus != nil && a.Status == *filter.NotStatus {
			continue
		}
		if filter.DueAfter != nil && a.DueDate < *filter.DueAfter {
			continue
		}
		if filter.DueBefore != nil && a.DueDate > *filter.DueBefore {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAssignmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.assignments[id]; !ok {
		return entities.ErrAssignmentNotFound
	}
	delete(r.assignments, id)
	return nil
}

func (r *fakeAssignmentRepo) DeleteByCourse(_ context.Context, courseID string) error {
	for id, a := range r.assignments {
		if a.CourseID == courseID {
			delete(r.assignments, id)
		}
	}
	return nil
}

type fakeTodoRepo struct {
	todos map[uuid.UUID]*entities.Todo
}

func newFakeTodoRepo(todos ...*entities.Todo) *fakeTodoRepo {
	repo := &fakeTodoRepo{todos: map[uuid.UUID]*entities.Todo{}}
	for _, td := range todos {
		repo.todos[td.ID] = td
	}
	return repo
}

func (r *fakeTodoRepo) Create(_ context.Context, td *entities.Todo) error {
	r.todos[td.ID] = td
	return nil
}

func (r *fakeTodoRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Todo, error) {
	td, ok := r.todos[id]
	if !ok {
		return nil, entities.ErrTodoNotFound
	}
	return td, nil
}

func (r *fakeTodoRepo) Update(_ context.Context, td *entities.Todo) error {
	if _, ok := r.todos[td.ID]; !ok {
		return entities.ErrTodoNotFound
	}
	r.todos[td.ID] = td
	return nil
}

func (r *fakeTodoRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.todos[id]; !ok {
		return entities.ErrTodoNotFound
	}
	delete(r.todos, id)
	return nil
}

func (r *fakeTodoRepo) List(_ context.Context, filter ports.TodoFilter) ([]*entities.Todo, error) {
	var out []*entities.Todo
	for _, td := range r.todos {
		if filter.Completed != nil && td.Completed != *filter.Completed {
			continue
		}
		if filter.Category != nil && td.Category != *filter.Category {
			continue
		}
		if filter.Priority != nil && td.Priority != *filter.Priority {
			continue
		}
		out = append(out, td)
	}
	return out, nil
}

func newTestChatService(provider ports.ModelProvider, assignments *fakeAssignmentRepo, todos *fakeTodoRepo) *ChatService {
	svc := NewChatService(provider, assignments, todos, schedule.NewCalendar(time.UTC), ChatConfig{Model: "test-model"}, logger.NewNop())
	svc.now = func() time.Time {
		return time.Date(2025, time.September, 16, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func textResponse(text string) *llm.MessagesResponse {
	return &llm.MessagesResponse{
		Role:       "assistant",
		StopReason: llm.StopReasonEndTurn,
		Content:    []llm.ContentBlock{{Type: llm.BlockText, Text: text}},
	}
}

func toolResponse(id, name, input string) *llm.MessagesResponse {
	return &llm.MessagesResponse{
		Role:       "assistant",
		StopReason: llm.StopReasonToolUse,
		Content: []llm.ContentBlock{
			{Type: llm.BlockText, Text: "On it."},
			{Type: llm.BlockToolUse, ID: id, Name: name, Input: json.RawMessage(input)},
		},
	}
}

func userMessage(text string) []llm.Message {
	return []llm.Message{{Role: "user", Content: text}}
}

func TestConversePlainText(t *testing.T) {
	provider := &fakeProvider{responses: []*llm.MessagesResponse{textResponse("Good luck on the quiz!")}}
	svc := newTestChatService(provider, newFakeAssignmentRepo(), newFakeTodoRepo())

	final, err := svc.Converse(context.Background(), userMessage("wish me luck"))
	if err != nil {
		t.Fatalf("Converse() error = %v", err)
	}
	if len(provider.requests) != 1 {
		t.Fatalf("provider called %d times, want 1", len(provider.requests))
	}
	if got := len(provider.requests[0].Tools); got != 14 {
		t.Errorf("first request carried %d tools, want 14", got)
	}
	if len(final) != 1 || final[0].Text != "Good luck on the quiz!" {
		t.Errorf("final blocks = %+v", final)
	}
}

func TestConverseToolTurn(t *testing.T) {
	essay := &entities.Assignment{
		ID:       uuid.New(),
		CourseID: "ENGL150-S26",
		Title:    "Essay draft",
		DueDate:  "2025-09-18",
		Status:   entities.StatusInProgress,
	}
	assignments := newFakeAssignmentRepo(essay)

	provider := &fakeProvider{responses: []*llm.MessagesResponse{
		toolResponse("toolu_01", "update_assignment_status", `{"assignment_id":"`+essay.ID.String()+`","status":"done"}`),
		textResponse("Marked the essay as done. Purr-fect work!"),
	}}
	svc := newTestChatService(provider, assignments, newFakeTodoRepo())

	final, err := svc.Converse(context.Background(), userMessage("mark the essay as done"))
	if err != nil {
		t.Fatalf("Converse() error = %v", err)
	}
	if essay.Status != entities.StatusDone {
		t.Errorf("assignment status = %q, want done", essay.Status)
	}
	if len(provider.requests) != 2 {
		t.Fatalf("provider called %d times, want 2", len(provider.requests))
	}

	second := provider.requests[1]
	if len(second.Messages) != 3 {
		t.Fatalf("second request carried %d messages, want 3", len(second.Messages))
	}
	if second.Messages[1].Role != "assistant" {
		t.Errorf("second message role = %q, want assistant", second.Messages[1].Role)
	}
	resultBlocks, ok := second.Messages[2].Content.([]llm.ContentBlock)
	if !ok || len(resultBlocks) != 1 {
		t.Fatalf("tool result message content = %+v", second.Messages[2].Content)
	}
	if resultBlocks[0].Type != llm.BlockToolResult || resultBlocks[0].ToolUseID != "toolu_01" {
		t.Errorf("tool result block = %+v", resultBlocks[0])
	}
	if !strings.Contains(resultBlocks[0].Content, `"success":true`) {
		t.Errorf("tool result = %q, want success payload", resultBlocks[0].Content)
	}
	if len(final) != 1 || !strings.Contains(final[0].Text, "Marked the essay") {
		t.Errorf("final blocks = %+v", final)
	}
}

func TestConverseToolErrorStillReplies(t *testing.T) {
	provider := &fakeProvider{responses: []*llm.MessagesResponse{
		toolResponse("toolu_02", "update_assignment_status", `{"assignment_id":"`+uuid.NewString()+`","status":"done"}`),
		textResponse("I couldn't find that assignment. Could you double-check the name?"),
	}}
	svc := newTestChatService(provider, newFakeAssignmentRepo(), newFakeTodoRepo())

	final, err := svc.Converse(context.Background(), userMessage("mark the essay as done"))
	if err != nil {
		t.Fatalf("Converse() error = %v, want nil (tool failures stay in-band)", err)
	}
	if len(provider.requests) != 2 {
		t.Fatalf("provider called %d times, want 2", len(provider.requests))
	}

	resultBlocks := provider.requests[1].Messages[2].Content.([]llm.ContentBlock)
	if !strings.Contains(resultBlocks[0].Content, `"error"`) {
		t.Errorf("tool result = %q, want error payload", resultBlocks[0].Content)
	}
	if len(final) != 1 || final[0].Text == "" {
		t.Errorf("final blocks = %+v", final)
	}
}

func TestConverseUnknownTool(t *testing.T) {
	provider := &fakeProvider{responses: []*llm.MessagesResponse{
		toolResponse("toolu_03", "teleport_to_class", `{}`),
		textResponse("That one is beyond my whiskers."),
	}}
	svc := newTestChatService(provider, newFakeAssignmentRepo(), newFakeTodoRepo())

	if _, err := svc.Converse(context.Background(), userMessage("teleport me to class")); err != nil {
		t.Fatalf("Converse() error = %v", err)
	}

	resultBlocks := provider.requests[1].Messages[2].Content.([]llm.ContentBlock)
	if !strings.Contains(resultBlocks[0].Content, "unknown tool: teleport_to_class") {
		t.Errorf("tool result = %q, want unknown tool error", resultBlocks[0].Content)
	}
}

func TestConverseProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream overloaded")}
	svc := newTestChatService(provider, newFakeAssignmentRepo(), newFakeTodoRepo())

	if _, err := svc.Converse(context.Background(), userMessage("hello")); err == nil {
		t.Fatal("Converse() succeeded, want provider error")
	}
}

func TestConverseSingleToolPerTurn(t *testing.T) {
	todos := newFakeTodoRepo()
	// Second response asks for another tool; the turn must still end
	// after one execution.
	provider := &fakeProvider{responses: []*llm.MessagesResponse{
		toolResponse("toolu_04", "add_todo", `{"title":"Buy flashcards"}`),
		toolResponse("toolu_05", "add_todo", `{"title":"Review notes"}`),
	}}
	svc := newTestChatService(provider, newFakeAssignmentRepo(), todos)

	if _, err := svc.Converse(context.Background(), userMessage("add two todos")); err != nil {
		t.Fatalf("Converse() error = %v", err)
	}
	if len(provider.requests) != 2 {
		t.Errorf("provider called %d times, want 2", len(provider.requests))
	}
	if len(todos.todos) != 1 {
		t.Errorf("%d todos created, want 1 per turn", len(todos.todos))
	}
}

func TestExecuteToolGetAssignmentsWindow(t *testing.T) {
	// Fixed "now" is Tuesday 2025-09-16; this_week spans 09-15..09-21.
	inWeek := &entities.Assignment{ID: uuid.New(), CourseID: "HIST201-S26", Title: "Reading response", DueDate: "2025-09-19", Status: entities.StatusTodo}
	nextMonth := &entities.Assignment{ID: uuid.New(), CourseID: "HIST201-S26", Title: "Term paper", DueDate: "2025-10-20", Status: entities.StatusTodo}
	svc := newTestChatService(&fakeProvider{}, newFakeAssignmentRepo(inWeek, nextMonth), newFakeTodoRepo())

	result := svc.executeTool(context.Background(), "get_assignments", json.RawMessage(`{"date_range":"this_week"}`))

	var got []entities.Assignment
	if err := json.Unmarshal([]byte(result), &got); err != nil {
		t.Fatalf("result %q did not decode: %v", result, err)
	}
	if len(got) != 1 || got[0].Title != "Reading response" {
		t.Errorf("this_week assignments = %+v", got)
	}
}

func TestExecuteToolGetCalendarWeek(t *testing.T) {
	svc := newTestChatService(&fakeProvider{}, newFakeAssignmentRepo(), newFakeTodoRepo())

	result := svc.executeTool(context.Background(), "get_calendar", json.RawMessage(`{}`))

	var got struct {
		View  string `json:"view"`
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal([]byte(result), &got); err != nil {
		t.Fatalf("result %q did not decode: %v", result, err)
	}
	if got.View != "week" || got.Start != "2025-09-15" || got.End != "2025-09-21" {
		t.Errorf("calendar = %+v, want week 2025-09-15..2025-09-21", got)
	}
}

func TestExecuteToolInstructionOnly(t *testing.T) {
	svc := newTestChatService(&fakeProvider{}, newFakeAssignmentRepo(), newFakeTodoRepo())

	result := svc.executeTool(context.Background(), "french_vocab_quiz", json.RawMessage(`{"topic":"travel"}`))

	var got map[string]string
	if err := json.Unmarshal([]byte(result), &got); err != nil {
		t.Fatalf("result %q did not decode: %v", result, err)
	}
	if !strings.Contains(got["instruction"], "10 words") {
		t.Errorf("instruction = %q, want default count of 10", got["instruction"])
	}
}
