package llm

import "context"

// Role represents a chat message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single message in a conversation.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // For tool result messages
	Name       string     `json:"name,omitempty"`         // Tool name on tool result messages
}

// ToolCall represents a tool invocation requested by the LLM.
// Arguments holds the raw JSON text exactly as the model produced it;
// decoding is deferred to the executor, which must recover from malformed
// output rather than fail here.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDef defines a tool that the LLM can call.
type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// StreamHandler receives text deltas during streaming.
type StreamHandler func(delta string)

// Response is the result of a chat completion call.
type Response struct {
	Message Message
}

// Client is the interface for LLM interactions.
type Client interface {
	ChatCompletionStream(ctx context.Context, messages []Message, tools []ToolDef, handler StreamHandler) (*Response, error)
}

// Helper constructors

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

func ToolResultMessage(toolCallID, toolName, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID, Name: toolName}
}
