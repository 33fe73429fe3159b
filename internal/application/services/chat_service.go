package services

import (
	"context"
	"fmt"
	"time"

	"github.com/semesterdesk/core/internal/adapters/llm"
	"github.com/semesterdesk/core/internal/domain/schedule"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
	"github.com/semesterdesk/core/internal/ports"
)

// DefaultSystemPrompt introduces Frederick, the assistant persona.
// Deployments override it through configuration.
const DefaultSystemPrompt = `You are Frederick, a wise and encouraging academic assistant cat. You help a student manage their semester: assignments, deadlines, readings, to-dos, and study habits.

PERSONALITY:
- Warm, encouraging, slightly playful
- Use cat-related metaphors occasionally
- Keep responses concise and actionable
- Always prioritize the student's wellbeing and stress management

CAPABILITIES:
- Query and manage assignments and to-dos
- Show calendar views of upcoming work
- Help with French (vocabulary, grammar, conversation practice, essay feedback)
- Generate study materials and exam prep
- Provide study tips and time management advice

Be helpful, be encouraging, be Frederick.`

// ChatConfig holds provider parameters for the chat loop.
type ChatConfig struct {
	Model        string
	MaxTokens    int
	SystemPrompt string
}

// turnState tracks one chat turn through the dispatch protocol. A turn
// never spans more than these states and nothing persists between
// turns.
type turnState int

const (
	stateIdle turnState = iota
	stateAwaitingFirstResponse
	stateAwaitingToolExecution
	stateAwaitingFinalResponse
	stateDone
)

// ChatService bridges a chat turn to the model provider and executes
// at most one tool call per turn against the datastore.
type ChatService struct {
	provider       ports.ModelProvider
	assignmentRepo ports.AssignmentRepository
	todoRepo       ports.TodoRepository
	calendar       *schedule.Calendar
	cfg            ChatConfig
	logger         *logger.Logger
	now            func() time.Time
}

// NewChatService creates a new chat service.
func NewChatService(provider ports.ModelProvider, assignmentRepo ports.AssignmentRepository, todoRepo ports.TodoRepository, calendar *schedule.Calendar, cfg ChatConfig, logger *logger.Logger) *ChatService {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	return &ChatService{
		provider:       provider,
		assignmentRepo: assignmentRepo,
		todoRepo:       todoRepo,
		calendar:       calendar,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
	}
}

// Converse runs one chat turn: the conversation goes to the provider
// with the tool catalog; if the model requests a tool, that single tool
// executes and the conversation is resubmitted with the result. The
// returned blocks are the model's final reply. Provider failures abort
// the turn; tool failures do not (they come back to the model as a
// structured error result).
func (s *ChatService) Converse(ctx context.Context, messages []llm.Message) ([]llm.ContentBlock, error) {
	var (
		first   *llm.MessagesResponse
		toolUse *llm.ContentBlock
		final   []llm.ContentBlock
	)

	state := stateIdle
	for state != stateDone {
		switch state {
		case stateIdle:
			state = stateAwaitingFirstResponse

		case stateAwaitingFirstResponse:
			resp, err := s.provider.CreateMessage(ctx, llm.MessagesRequest{
				Model:     s.cfg.Model,
				MaxTokens: s.cfg.MaxTokens,
				System:    s.cfg.SystemPrompt,
				Tools:     toolCatalog(),
				Messages:  messages,
			})
			if err != nil {
				return nil, fmt.Errorf("provider first round: %w", err)
			}
			first = resp
			if resp.StopReason == llm.StopReasonToolUse {
				toolUse = resp.FirstToolUse()
			}
			if toolUse == nil {
				final = resp.Content
				state = stateDone
			} else {
				state = stateAwaitingToolExecution
			}

		case stateAwaitingToolExecution:
			result := s.executeTool(ctx, toolUse.Name, toolUse.Input)
			s.logger.Infow("Chat tool executed", "tool", toolUse.Name)

			messages = append(messages,
				llm.Message{Role: "assistant", Content: first.Content},
				llm.Message{Role: "user", Content: []llm.ContentBlock{{
					Type:      llm.BlockToolResult,
					ToolUseID: toolUse.ID,
					Content:   result,
				}}},
			)
			state = stateAwaitingFinalResponse

		case stateAwaitingFinalResponse:
			resp, err := s.provider.CreateMessage(ctx, llm.MessagesRequest{
				Model:     s.cfg.Model,
				MaxTokens: s.cfg.MaxTokens,
				System:    s.cfg.SystemPrompt,
				Tools:     toolCatalog(),
				Messages:  messages,
			})
			if err != nil {
				return nil, fmt.Errorf("provider final round: %w", err)
			}
			final = resp.Content
			state = stateDone
		}
	}
	return final, nil
}
