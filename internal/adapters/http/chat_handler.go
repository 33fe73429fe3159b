package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/semesterdesk/core/internal/adapters/llm"
	"github.com/semesterdesk/core/internal/application/services"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
)

// ChatHandler handles assistant conversation requests
type ChatHandler struct {
	chatService *services.ChatService
	logger      *logger.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService, logger *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat handles POST /api/chat. The body carries the whole conversation;
// the response is the model's final content blocks for this turn.
func (h *ChatHandler) Chat(c echo.Context) error {
	var req struct {
		Messages []llm.Message `json:"messages"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if len(req.Messages) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No messages provided")
	}

	content, err := h.chatService.Converse(c.Request().Context(), req.Messages)
	if err != nil {
		h.logger.Error("Chat turn failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"content": content})
}
