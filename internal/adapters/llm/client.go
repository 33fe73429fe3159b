// Package llm is a thin HTTP adapter for the hosted Messages API the
// chat assistant and syllabus parser run on. Only the request/response
// surface the services need is modeled: text blocks, tool use, tool
// results, and base64 PDF document blocks.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

// Stop reasons returned by the provider.
const (
	StopReasonEndTurn = "end_turn"
	StopReasonToolUse = "tool_use"
)

// Content block types.
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
	BlockDocument   = "document"
)

// Message is one turn of role-tagged content. Content is either a
// plain string (the shape the chat UI sends) or a []ContentBlock for
// tool rounds; both marshal correctly as-is.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentBlock is one element of a structured message body.
type ContentBlock struct {
	Type string `json:"type"`

	// BlockText
	Text string `json:"text,omitempty"`

	// BlockToolUse
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// BlockToolResult
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`

	// BlockDocument
	Source *DocumentSource `json:"source,omitempty"`
}

// DocumentSource carries an inline base64 document, used for syllabus
// PDF parsing.
type DocumentSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// Tool describes one named operation the model may request, with a
// JSON-schema input shape.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// MessagesRequest is the provider request body.
type MessagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Tools     []Tool    `json:"tools,omitempty"`
	Messages  []Message `json:"messages"`
}

// MessagesResponse is the provider response body. StopReason
// distinguishes a final text reply from a tool request.
type MessagesResponse struct {
	ID         string         `json:"id"`
	Role       string         `json:"role"`
	StopReason string         `json:"stop_reason"`
	Content    []ContentBlock `json:"content"`
}

// FirstToolUse returns the first tool_use block, if any.
func (r *MessagesResponse) FirstToolUse() *ContentBlock {
	for i := range r.Content {
		if r.Content[i].Type == BlockToolUse {
			return &r.Content[i]
		}
	}
	return nil
}

// JoinedText concatenates all text blocks.
func (r *MessagesResponse) JoinedText() string {
	var out string
	for _, b := range r.Content {
		if b.Type == BlockText {
			out += b.Text
		}
	}
	return out
}

// APIError is a non-2xx provider response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Message)
}

// Config holds client settings, filled from the application config.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Messages API over HTTP. There is no retry
// policy; provider failures surface to the caller for the whole turn.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a provider client. An empty base URL targets the
// hosted API; tests point it at a local server.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
	}
}

// CreateMessage performs one request/response round with the provider.
func (c *Client) CreateMessage(ctx context.Context, req MessagesRequest) (*MessagesResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		msg := string(data)
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out MessagesResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	return &out, nil
}
