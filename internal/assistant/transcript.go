package assistant

import (
	"encoding/json"
	"errors"

	"github.com/nimbuslabs/nimbus/internal/llm"
)

// ErrInvalidAssistantMessage rejects an assistant message that carries
// neither content nor tool calls; the chat API refuses such messages, so
// they must never reach the transcript.
var ErrInvalidAssistantMessage = errors.New("assistant message must have either content or tool calls")

// Transcript is the ordered, append-only log of messages exchanged with
// the model. Messages are validated on the way in and never reordered or
// removed during a session. It is mutated only by the interaction loop,
// between suspension points, so it needs no locking.
type Transcript struct {
	messages []llm.Message
}

// NewTranscript creates a transcript seeded with a system prompt.
func NewTranscript(systemPrompt string) *Transcript {
	t := &Transcript{}
	if systemPrompt != "" {
		t.messages = append(t.messages, llm.SystemMessage(systemPrompt))
	}
	return t
}

// Append validates and adds a message to the end of the transcript.
func (t *Transcript) Append(msg llm.Message) error {
	if msg.Role == llm.RoleAssistant && msg.Content == "" && len(msg.ToolCalls) == 0 {
		return ErrInvalidAssistantMessage
	}
	t.messages = append(t.messages, msg)
	return nil
}

// Messages returns a copy of the transcript for use in an API request.
func (t *Transcript) Messages() []llm.Message {
	out := make([]llm.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages, including the system prompt.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Reset clears the conversation, keeping only the system prompt.
func (t *Transcript) Reset() {
	if len(t.messages) > 0 && t.messages[0].Role == llm.RoleSystem {
		t.messages = t.messages[:1]
		return
	}
	t.messages = nil
}

// JSON returns the transcript as formatted JSON (for debugging/display).
func (t *Transcript) JSON() string {
	data, _ := json.MarshalIndent(t.messages, "", "  ")
	return string(data)
}
