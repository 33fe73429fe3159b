package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/semesterdesk/core/internal/adapters/llm"
	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/domain/schedule"
	"github.com/semesterdesk/core/internal/ports"
)

// toolCatalog declares the fixed set of operations the model may
// request. The schemas mirror the datastore surface; the language
// tools at the bottom "execute" by returning an instruction payload
// for the model itself, with no side effect.
func toolCatalog() []llm.Tool {
	obj := func(props map[string]any, required ...string) map[string]any {
		schema := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			schema["required"] = required
		}
		return schema
	}
	str := func(desc string) map[string]any {
		return map[string]any{"type": "string", "description": desc}
	}
	strEnum := func(desc string, values ...string) map[string]any {
		return map[string]any{"type": "string", "enum": values, "description": desc}
	}

	return []llm.Tool{
		{
			Name:        "get_assignments",
			Description: "Get assignments filtered by date range, course, or status. Returns upcoming, overdue, or all assignments.",
			InputSchema: obj(map[string]any{
				"course_id":  str("Filter by course ID (e.g., ARTH224-S26). Optional."),
				"status":     strEnum("Filter by status. Optional.", "todo", "in-progress", "done", "scheduled", "no-class"),
				"date_range": strEnum("Date range filter. Default: this_week", "today", "this_week", "this_month", "overdue", "all"),
			}),
		},
		{
			Name:        "update_assignment_status",
			Description: "Update the status of an assignment. Use this when work is completed or progress should be tracked.",
			InputSchema: obj(map[string]any{
				"assignment_id": str("UUID of the assignment to update"),
				"status":        strEnum("New status", "todo", "in-progress", "done"),
				"notes":         str("Optional notes to add/update"),
			}, "assignment_id", "status"),
		},
		{
			Name:        "add_assignment",
			Description: "Create a new assignment. Use when a new deadline comes up.",
			InputSchema: obj(map[string]any{
				"course_id": str("Course ID (e.g., ARTH224-S26)"),
				"title":     str("Assignment title"),
				"due_date":  str("Due date in YYYY-MM-DD format"),
				"notes":     str("Optional notes"),
			}, "course_id", "title", "due_date"),
		},
		{
			Name:        "get_calendar",
			Description: "Get a calendar view of assignments for a specific time period.",
			InputSchema: obj(map[string]any{
				"view": strEnum("Calendar view type. Default: week", "week", "month"),
			}),
		},
		{
			Name:        "get_todos",
			Description: "Get to-do list items. Can filter by completion status, category, or priority.",
			InputSchema: obj(map[string]any{
				"completed": map[string]any{"type": "boolean", "description": "Filter by completion status. Optional."},
				"category":  strEnum("Filter by category. Optional.", "school", "personal", "errands", "work", "health", "general"),
				"priority":  strEnum("Filter by priority. Optional.", "low", "medium", "high"),
			}),
		},
		{
			Name:        "add_todo",
			Description: "Add a new task to the to-do list.",
			InputSchema: obj(map[string]any{
				"title":       str("Task title"),
				"description": str("Optional task description"),
				"category":    strEnum("Task category. Default: general", "school", "personal", "errands", "work", "health", "general"),
				"priority":    strEnum("Task priority. Default: medium", "low", "medium", "high"),
				"due_date":    str("Due date in YYYY-MM-DD format. Optional."),
			}, "title"),
		},
		{
			Name:        "update_todo",
			Description: "Update a to-do item. Can mark as completed, change priority, or edit details.",
			InputSchema: obj(map[string]any{
				"todo_id":   str("UUID of the todo to update"),
				"completed": map[string]any{"type": "boolean", "description": "Mark as completed/uncompleted"},
				"title":     str("New title"),
				"priority":  strEnum("New priority", "low", "medium", "high"),
			}, "todo_id"),
		},
		{
			Name:        "delete_todo",
			Description: "Delete a to-do item.",
			InputSchema: obj(map[string]any{
				"todo_id": str("UUID of the todo to delete"),
			}, "todo_id"),
		},
		{
			Name:        "french_vocab_quiz",
			Description: "Generate a French vocabulary quiz with translations and example sentences.",
			InputSchema: obj(map[string]any{
				"topic": str(`Topic or theme (e.g., "food", "travel", "subjunctive verbs")`),
				"count": map[string]any{"type": "number", "description": "Number of words. Default: 10"},
			}, "topic"),
		},
		{
			Name:        "french_grammar_help",
			Description: "Explain French grammar concepts with examples and exercises.",
			InputSchema: obj(map[string]any{
				"concept": str(`Grammar concept (e.g., "subjunctive", "passé composé", "pronouns")`),
			}, "concept"),
		},
		{
			Name:        "french_conversation",
			Description: "Start a French conversation practice session. Respond in French and provide corrections.",
			InputSchema: obj(map[string]any{
				"topic": str(`Conversation topic (e.g., "daily routine", "travel plans")`),
			}, "topic"),
		},
		{
			Name:        "french_essay_feedback",
			Description: "Review a French essay for grammar, vocabulary, and style. Provide corrections and suggestions.",
			InputSchema: obj(map[string]any{
				"essay_text": str("The French essay text to review"),
			}, "essay_text"),
		},
		{
			Name:        "exam_prep_generator",
			Description: "Generate study materials for an upcoming exam: study guide, practice questions, or flashcards.",
			InputSchema: obj(map[string]any{
				"course_id":     str("Course ID for the exam"),
				"exam_topic":    str("Main topic or chapter for the exam"),
				"material_type": strEnum("Type of study material to generate", "study_guide", "practice_questions", "flashcards"),
				"difficulty":    strEnum("Difficulty level. Default: medium", "easy", "medium", "hard"),
			}, "course_id", "exam_topic", "material_type"),
		},
		{
			Name:        "web_search",
			Description: "Search the web for academic resources, research sources, or factual information.",
			InputSchema: obj(map[string]any{
				"query": str("Search query"),
				"focus": strEnum("Search focus. Use academic for scholarly sources. Default: general", "academic", "news", "general"),
			}, "query"),
		},
	}
}

// toolError serializes a failure into the structured result shape the
// model expects. Tool failures never abort the turn.
func toolError(err error) string {
	payload, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(payload)
}

func toolJSON(v any) string {
	payload, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Errorf("serialize tool result: %w", err))
	}
	return string(payload)
}

func instruction(text string) string {
	return toolJSON(map[string]string{"instruction": text})
}

// executeTool runs one named tool synchronously. Unknown names and
// datastore errors come back as {"error": ...} results.
func (s *ChatService) executeTool(ctx context.Context, name string, input json.RawMessage) string {
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}
	switch name {
	case "get_assignments":
		return s.toolGetAssignments(ctx, input)
	case "update_assignment_status":
		return s.toolUpdateAssignmentStatus(ctx, input)
	case "add_assignment":
		return s.toolAddAssignment(ctx, input)
	case "get_calendar":
		return s.toolGetCalendar(ctx, input)
	case "get_todos":
		return s.toolGetTodos(ctx, input)
	case "add_todo":
		return s.toolAddTodo(ctx, input)
	case "update_todo":
		return s.toolUpdateTodo(ctx, input)
	case "delete_todo":
		return s.toolDeleteTodo(ctx, input)
	case "french_vocab_quiz":
		var args struct {
			Topic string `json:"topic"`
			Count int    `json:"count"`
		}
		if err := json.Unmarshal(input, &args); err != nil {
			return toolError(err)
		}
		if args.Count <= 0 {
			args.Count = 10
		}
		return instruction(fmt.Sprintf("Generate a French vocabulary quiz on %q with %d words. Include French word, English translation, and an example sentence for each.", args.Topic, args.Count))
	case "french_grammar_help":
		var args struct {
			Concept string `json:"concept"`
		}
		if err := json.Unmarshal(input, &args); err != nil {
			return toolError(err)
		}
		return instruction(fmt.Sprintf("Explain the French grammar concept %q with clear examples and practice exercises.", args.Concept))
	case "french_conversation":
		var args struct {
			Topic string `json:"topic"`
		}
		if err := json.Unmarshal(input, &args); err != nil {
			return toolError(err)
		}
		return instruction(fmt.Sprintf("Start a French conversation about %q. Respond in French and provide gentle corrections to the student's replies.", args.Topic))
	case "french_essay_feedback":
		var args struct {
			EssayText string `json:"essay_text"`
		}
		if err := json.Unmarshal(input, &args); err != nil {
			return toolError(err)
		}
		return instruction("Review this French essay and provide detailed feedback on grammar, vocabulary, and style:\n\n" + args.EssayText)
	case "exam_prep_generator":
		var args struct {
			CourseID     string `json:"course_id"`
			ExamTopic    string `json:"exam_topic"`
			MaterialType string `json:"material_type"`
			Difficulty   string `json:"difficulty"`
		}
		if err := json.Unmarshal(input, &args); err != nil {
			return toolError(err)
		}
		if args.Difficulty == "" {
			args.Difficulty = "medium"
		}
		return instruction(fmt.Sprintf("Generate %s for %s in course %s. Difficulty: %s. For study_guide: a comprehensive outline with key concepts, terms, and connections. For practice_questions: 10-15 questions with answers across formats. For flashcards: 20-25 question/answer pairs. Format the output clearly with headings.",
			args.MaterialType, args.ExamTopic, args.CourseID, args.Difficulty))
	case "web_search":
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(input, &args); err != nil {
			return toolError(err)
		}
		return instruction(fmt.Sprintf("Web search is not connected. Suggest search terms and reliable academic databases for %q, and explain what you already know about it.", args.Query))
	default:
		return toolError(fmt.Errorf("unknown tool: %s", name))
	}
}

func (s *ChatService) toolGetAssignments(ctx context.Context, input json.RawMessage) string {
	var args struct {
		CourseID  string `json:"course_id"`
		Status    string `json:"status"`
		DateRange string `json:"date_range"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return toolError(err)
	}

	filter := ports.AssignmentFilter{}
	if args.CourseID != "" {
		filter.CourseID = &args.CourseID
	}
	if args.Status != "" {
		status := entities.ParseAssignmentStatus(args.Status)
		filter.Status = &status
	}
	assignments, err := s.assignmentRepo.List(ctx, filter)
	if err != nil {
		return toolError(err)
	}

	window := schedule.ParseWindow(args.DateRange)
	kept, _ := s.calendar.Filter(assignments, window, s.now())
	return toolJSON(schedule.SortChronological(kept))
}

func (s *ChatService) toolUpdateAssignmentStatus(ctx context.Context, input json.RawMessage) string {
	var args struct {
		AssignmentID string  `json:"assignment_id"`
		Status       string  `json:"status"`
		Notes        *string `json:"notes"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return toolError(err)
	}
	id, err := uuid.Parse(args.AssignmentID)
	if err != nil {
		return toolError(fmt.Errorf("invalid assignment_id: %w", err))
	}

	status := entities.ParseAssignmentStatus(args.Status)
	if err := s.assignmentRepo.UpdateStatus(ctx, id, status, args.Notes); err != nil {
		return toolError(err)
	}
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return toolError(err)
	}
	return toolJSON(map[string]any{"success": true, "assignment": assignment})
}

func (s *ChatService) toolAddAssignment(ctx context.Context, input json.RawMessage) string {
	var args struct {
		CourseID string  `json:"course_id"`
		Title    string  `json:"title"`
		DueDate  string  `json:"due_date"`
		Notes    *string `json:"notes"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return toolError(err)
	}

	assignment := &entities.Assignment{
		ID:       uuid.New(),
		CourseID: args.CourseID,
		Title:    args.Title,
		DueDate:  args.DueDate,
		Notes:    args.Notes,
		Status:   entities.StatusTodo,
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return toolError(err)
	}
	return toolJSON(map[string]any{"success": true, "assignment": assignment})
}

func (s *ChatService) toolGetCalendar(ctx context.Context, input json.RawMessage) string {
	var args struct {
		View string `json:"view"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return toolError(err)
	}

	today := s.calendar.DateOf(s.now())
	var start, end string
	if args.View == "month" {
		first := today.AddDate(0, 0, 1-today.Day())
		start = first.Format(entities.DateLayout)
		end = first.AddDate(0, 1, -1).Format(entities.DateLayout)
	} else {
		args.View = "week"
		weekStart := s.calendar.StartOfWeek(today)
		start = weekStart.Format(entities.DateLayout)
		end = s.calendar.EndOfWeek(weekStart).Format(entities.DateLayout)
	}

	assignments, err := s.assignmentRepo.List(ctx, ports.AssignmentFilter{DueAfter: &start, DueBefore: &end})
	if err != nil {
		return toolError(err)
	}
	return toolJSON(map[string]any{
		"view":        args.View,
		"start":       start,
		"end":         end,
		"assignments": schedule.SortChronological(assignments),
	})
}

func (s *ChatService) toolGetTodos(ctx context.Context, input json.RawMessage) string {
	var args struct {
		Completed *bool  `json:"completed"`
		Category  string `json:"category"`
		Priority  string `json:"priority"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return toolError(err)
	}

	filter := ports.TodoFilter{Completed: args.Completed}
	if args.Category != "" {
		category := entities.ParseTodoCategory(args.Category)
		filter.Category = &category
	}
	if args.Priority != "" {
		priority := entities.ParseTodoPriority(args.Priority)
		filter.Priority = &priority
	}
	todos, err := s.todoRepo.List(ctx, filter)
	if err != nil {
		return toolError(err)
	}
	return toolJSON(todos)
}

func (s *ChatService) toolAddTodo(ctx context.Context, input json.RawMessage) string {
	var args struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Category    string  `json:"category"`
		Priority    string  `json:"priority"`
		DueDate     *string `json:"due_date"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return toolError(err)
	}

	todo := &entities.Todo{
		ID:          uuid.New(),
		Title:       args.Title,
		Description: args.Description,
		Category:    entities.ParseTodoCategory(args.Category),
		Priority:    entities.ParseTodoPriority(args.Priority),
		DueDate:     args.DueDate,
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return toolError(err)
	}
	return toolJSON(map[string]any{"success": true, "todo": todo})
}

func (s *ChatService) toolUpdateTodo(ctx context.Context, input json.RawMessage) string {
	var args struct {
		TodoID    string  `json:"todo_id"`
		Completed *bool   `json:"completed"`
		Title     *string `json:"title"`
		Priority  *string `json:"priority"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return toolError(err)
	}
	id, err := uuid.Parse(args.TodoID)
	if err != nil {
		return toolError(fmt.Errorf("invalid todo_id: %w", err))
	}

	todo, err := s.todoRepo.GetByID(ctx, id)
	if err != nil {
		return toolError(err)
	}
	if args.Completed != nil {
		todo.Completed = *args.Completed
	}
	if args.Title != nil {
		todo.Title = *args.Title
	}
	if args.Priority != nil {
		todo.Priority = entities.ParseTodoPriority(*args.Priority)
	}
	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return toolError(err)
	}
	return toolJSON(map[string]any{"success": true, "todo": todo})
}

func (s *ChatService) toolDeleteTodo(ctx context.Context, input json.RawMessage) string {
	var args struct {
		TodoID string `json:"todo_id"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return toolError(err)
	}
	id, err := uuid.Parse(args.TodoID)
	if err != nil {
		return toolError(fmt.Errorf("invalid todo_id: %w", err))
	}
	if err := s.todoRepo.Delete(ctx, id); err != nil {
		return toolError(err)
	}
	return toolJSON(map[string]any{"success": true, "deleted": true})
}
