package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/openai/openai-go"
)

// ChatCompletionStream sends a streaming chat completion request with the
// given tools and automatic tool choice. The handler is called with each
// text delta as it arrives. Tool-call fragments are assembled across
// chunks and returned, ordered by slot index, once the stream is drained.
func (c *OpenAICompatClient) ChatCompletionStream(ctx context.Context, messages []Message, tools []ToolDef, handler StreamHandler) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: convertMessages(messages),
	}

	if len(tools) > 0 {
		params.Tools = convertTools(tools)
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("auto"),
		}
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("creating chat stream: %w", err)
	}
	defer stream.Close()

	acc := newAccumulator(handler)

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta

		frag := streamFragment{Content: delta.Content}
		for _, tc := range delta.ToolCalls {
			frag.ToolCalls = append(frag.ToolCalls, toolCallFragment{
				Index:     int(tc.Index),
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		acc.add(frag)
	}

	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("draining chat stream: %w", err)
	}

	content, toolCalls := acc.finalize()
	return &Response{
		Message: Message{
			Role:      RoleAssistant,
			Content:   content,
			ToolCalls: toolCalls,
		},
	}, nil
}

// IsTimeout reports whether err was caused by a request deadline rather
// than a protocol or transport fault.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
