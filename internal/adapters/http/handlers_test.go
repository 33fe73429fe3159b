package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/semesterdesk/core/internal/adapters/llm"
	"github.com/semesterdesk/core/internal/application/services"
	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/domain/schedule"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
	"github.com/semesterdesk/core/internal/ports"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

type memCourseRepo struct {
	courses map[string]*entities.Course
}

func (r *memCourseRepo) Upsert(_ context.Context, c *entities.Course) error {
	r.courses[c.ID] = c
	return nil
}

func (r *memCourseRepo) GetByID(_ context.Context, id string) (*entities.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, entities.ErrCourseNotFound
	}
	return c, nil
}

func (r *memCourseRepo) List(_ context.Context) ([]*entities.Course, error) {
	var out []*entities.Course
	for _, c := range r.courses {
		out = append(out, c)
	}
	return out, nil
}

func (r *memCourseRepo) Update(_ context.Context, c *entities.Course) error {
	r.courses[c.ID] = c
	return nil
}

type memAssignmentRepo struct {
	assignments map[uuid.UUID]*entities.Assignment
}

func (r *memAssignmentRepo) Create(_ context.Context, a *entities.Assignment) error {
	r.assignments[a.ID] = a
	return nil
}

func (r *memAssignmentRepo) CreateBatch(ctx context.Context, assignments []*entities.Assignment) error {
	for _, a := range assignments {
		r.assignments[a.ID] = a
	}
	return nil
}

func (r *memAssignmentRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Assignment, error) {
	a, ok := r.assignments[id]
	if !ok {
		return nil, entities.ErrAssignmentNotFound
	}
	return a, nil
}

func (r *memAssignmentRepo) Update(_ context.Context, a *entities.Assignment) error {
	r.assignments[a.ID] = a
	return nil
}

func (r *memAssignmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entities.AssignmentStatus, notes *string) error {
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

func (r *memAssignmentRepo) List(_ context.Context, filter ports.AssignmentFilter) ([]*entities.Assignment, error) {
	var out []*entities.Assignment
	for _, a := range r.assignments {
		if filter.CourseID != nil && a.CourseID != *filter.CourseID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *memAssignmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.assignments[id]; !ok {
		return entities.ErrAssignmentNotFound
	}
	delete(r.assignments, id)
	return nil
}

func (r *memAssignmentRepo) DeleteByCourse(_ context.Context, courseID string) error {
	for id, a := range r.assignments {
		if a.CourseID == courseID {
			delete(r.assignments, id)
		}
	}
	return nil
}

type memTodoRepo struct {
	todos map[uuid.UUID]*entities.Todo
}

func (r *memTodoRepo) Create(_ context.Context, td *entities.Todo) error {
	r.todos[td.ID] = td
	return nil
}

func (r *memTodoRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Todo, error) {
	td, ok := r.todos[id]
	if !ok {
		return nil, entities.ErrTodoNotFound
	}
	return td, nil
}

func (r *memTodoRepo) Update(_ context.Context, td *entities.Todo) error {
	r.todos[td.ID] = td
	return nil
}

func (r *memTodoRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.todos[id]; !ok {
		return entities.ErrTodoNotFound
	}
	delete(r.todos, id)
	return nil
}

func (r *memTodoRepo) List(_ context.Context, filter ports.TodoFilter) ([]*entities.Todo, error) {
	var out []*entities.Todo
	for _, td := range r.todos {
		if filter.Completed != nil && td.Completed != *filter.Completed {
			continue
		}
		out = append(out, td)
	}
	return out, nil
}

func newAssignmentTestHandler(assignments *memAssignmentRepo, courses *memCourseRepo) *AssignmentHandler {
	svc := services.NewAssignmentService(assignments, courses, schedule.NewCalendar(time.UTC), logger.NewNop())
	return NewAssignmentHandler(svc, logger.NewNop())
}

func TestCreateAssignmentEndpoint(t *testing.T) {
	courses := &memCourseRepo{courses: map[string]*entities.Course{
		"ARTH224-S26": {ID: "ARTH224-S26", Title: "Modern Art"},
	}}
	assignments := &memAssignmentRepo{assignments: map[uuid.UUID]*entities.Assignment{}}
	h := newAssignmentTestHandler(assignments, courses)

	body := `{"course_id":"ARTH224-S26","title":"Response paper","due_date":"2026-02-10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/assignments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := newTestEcho().NewContext(req, rec)

	if err := h.CreateAssignment(c); err != nil {
		t.Fatalf("CreateAssignment() error = %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var created entities.Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("response did not decode: %v", err)
	}
	if created.Title != "Response paper" || created.Status != entities.StatusTodo {
		t.Errorf("created = %+v", created)
	}
	if _, ok := assignments.assignments[created.ID]; !ok {
		t.Error("assignment was not persisted")
	}
}

func TestCreateAssignmentValidation(t *testing.T) {
	h := newAssignmentTestHandler(
		&memAssignmentRepo{assignments: map[uuid.UUID]*entities.Assignment{}},
		&memCourseRepo{courses: map[string]*entities.Course{}},
	)

	// Missing due_date
	body := `{"course_id":"ARTH224-S26","title":"Response paper"}`
	req := httptest.NewRequest(http.MethodPost, "/api/assignments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := newTestEcho().NewContext(req, rec)

	err := h.CreateAssignment(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("CreateAssignment() error = %v, want 400", err)
	}
}

func TestCreateAssignmentUnknownCourse(t *testing.T) {
	h := newAssignmentTestHandler(
		&memAssignmentRepo{assignments: map[uuid.UUID]*entities.Assignment{}},
		&memCourseRepo{courses: map[string]*entities.Course{}},
	)

	body := `{"course_id":"NOPE101","title":"Quiz","due_date":"2026-02-10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/assignments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := newTestEcho().NewContext(req, rec)

	err := h.CreateAssignment(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("CreateAssignment() error = %v, want 404", err)
	}
}

func TestUpdateAssignmentStatusEndpoint(t *testing.T) {
	id := uuid.New()
	assignments := &memAssignmentRepo{assignments: map[uuid.UUID]*entities.Assignment{
		id: {ID: id, CourseID: "ARTH224-S26", Title: "Essay", DueDate: "2026-02-10", Status: entities.StatusTodo},
	}}
	h := newAssignmentTestHandler(assignments, &memCourseRepo{courses: map[string]*entities.Course{}})

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"done"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := newTestEcho().NewContext(req, rec)
	c.SetPath("/api/assignments/:id/status")
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	if err := h.UpdateAssignmentStatus(c); err != nil {
		t.Fatalf("UpdateAssignmentStatus() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if assignments.assignments[id].Status != entities.StatusDone {
		t.Errorf("stored status = %q, want done", assignments.assignments[id].Status)
	}
}

func TestListAssignmentsWindowParam(t *testing.T) {
	soon := uuid.New()
	later := uuid.New()
	assignments := &memAssignmentRepo{assignments: map[uuid.UUID]*entities.Assignment{
		soon:  {ID: soon, CourseID: "ARTH224-S26", Title: "Due soon", DueDate: time.Now().UTC().Format(entities.DateLayout), Status: entities.StatusTodo},
		later: {ID: later, CourseID: "ARTH224-S26", Title: "Due in a year", DueDate: time.Now().UTC().AddDate(1, 0, 0).Format(entities.DateLayout), Status: entities.StatusTodo},
	}}
	h := newAssignmentTestHandler(assignments, &memCourseRepo{courses: map[string]*entities.Course{}})

	req := httptest.NewRequest(http.MethodGet, "/?window=today", nil)
	rec := httptest.NewRecorder()
	c := newTestEcho().NewContext(req, rec)

	if err := h.ListAssignments(c); err != nil {
		t.Fatalf("ListAssignments() error = %v", err)
	}

	var got []entities.Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response did not decode: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Due soon" {
		t.Errorf("today window = %+v", got)
	}
}

func TestTodoEndpoints(t *testing.T) {
	todos := &memTodoRepo{todos: map[uuid.UUID]*entities.Todo{}}
	h := NewTodoHandler(services.NewTodoService(todos, logger.NewNop()), logger.NewNop())
	e := newTestEcho()

	// Create
	req := httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader(`{"title":"Return library books","category":"errands"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.CreateTodo(e.NewContext(req, rec)); err != nil {
		t.Fatalf("CreateTodo() error = %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", rec.Code)
	}
	var created entities.Todo
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("create response did not decode: %v", err)
	}
	if created.Category != entities.CategoryErrands || created.Priority != entities.PriorityMedium {
		t.Errorf("created = %+v", created)
	}

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	if err := h.DeleteTodo(c); err != nil {
		t.Fatalf("DeleteTodo() error = %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	if len(todos.todos) != 0 {
		t.Error("todo was not deleted")
	}

	// Delete again: 404
	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	err := h.DeleteTodo(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("second DeleteTodo() error = %v, want 404", err)
	}
}

func TestParseUUIDParamRejectsGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := newTestEcho().NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if _, err := parseUUIDParam(c, "id"); err == nil {
		t.Fatal("parseUUIDParam() accepted garbage")
	}
}

type stubProvider struct {
	resp *llm.MessagesResponse
}

func (p *stubProvider) CreateMessage(_ context.Context, _ llm.MessagesRequest) (*llm.MessagesResponse, error) {
	return p.resp, nil
}

func TestChatEndpoint(t *testing.T) {
	provider := &stubProvider{resp: &llm.MessagesResponse{
		StopReason: llm.StopReasonEndTurn,
		Content:    []llm.ContentBlock{{Type: llm.BlockText, Text: "Bonjour!"}},
	}}
	svc := services.NewChatService(provider,
		&memAssignmentRepo{assignments: map[uuid.UUID]*entities.Assignment{}},
		&memTodoRepo{todos: map[uuid.UUID]*entities.Todo{}},
		schedule.NewCalendar(time.UTC), services.ChatConfig{Model: "test-model"}, logger.NewNop())
	h := NewChatHandler(svc, logger.NewNop())

	body := `{"messages":[{"role":"user","content":"salut"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := newTestEcho().NewContext(req, rec)

	if err := h.Chat(c); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Chat() status = %d, want 200", rec.Code)
	}
	var resp struct {
		Content []llm.ContentBlock `json:"content"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Content) != 1 || resp.Content[0].Text != "Bonjour!" {
		t.Fatalf("Chat() content = %+v", resp.Content)
	}
}

func TestChatEndpointRejectsEmpty(t *testing.T) {
	svc := services.NewChatService(&stubProvider{},
		&memAssignmentRepo{assignments: map[uuid.UUID]*entities.Assignment{}},
		&memTodoRepo{todos: map[uuid.UUID]*entities.Todo{}},
		schedule.NewCalendar(time.UTC), services.ChatConfig{Model: "test-model"}, logger.NewNop())
	h := NewChatHandler(svc, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":[]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := newTestEcho().NewContext(req, httptest.NewRecorder())

	err := h.Chat(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("Chat() with no messages error = %v, want 400", err)
	}
}
