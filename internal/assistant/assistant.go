// Package assistant implements the weather assistant's conversation core:
// the transcript, the tool-calling interaction loop, and the concurrent
// multi-city weather tool executor.
package assistant

import (
	"context"
	"fmt"

	"github.com/nimbuslabs/nimbus/internal/llm"
)

const defaultSystemPrompt = `You are a helpful weather assistant. You can check the weather for any city.
IMPORTANT: Only call the weather tool if the user explicitly asks for weather information or mentions a specific location. If the user greets you (e.g., 'Hi', 'Hello') or asks general questions, reply conversationally WITHOUT calling any tools.

When providing weather information for multiple cities, format your response as follows:
- Start with a brief introduction like 'Here's the current weather in each city:'
- Use a bulleted list with markdown formatting: **City, Country**: detailed description
- For each city, provide a natural, conversational description including temperature and how it feels, humidity, wind speed, and precipitation status
- End with your short opinion about the weather in a friendly format and ask if the user wants to know anything else
Always allow for follow-up questions and be conversational.

What you should NOT do:
- Do not make up or invent weather data - only use information from the tool calls
- Do not provide weather forecasts for future dates - only current weather
- Do not provide weather information for cities that were not requested
- Do not mention tool calls in your response
- Do NOT call the weather tool if the user message does not contain a location or a weather-related question.`

const defaultMaxTurns = 10

// Assistant owns one conversation with the model and drives the
// tool-calling interaction loop. One Assistant serves one session; it is
// not safe for concurrent ProcessMessage calls.
type Assistant struct {
	llm        llm.Client
	weather    WeatherProvider
	transcript *Transcript
	tools      []llm.ToolDef
	maxTurns   int

	OnTextDelta  func(delta string)
	OnToolCall   func(name, rawArgs string)
	OnCityLookup func(city string)
	OnToolResult func(name, content string)
}

// New creates an Assistant with the given LLM client and weather provider.
func New(client llm.Client, provider WeatherProvider, maxTurns int) *Assistant {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &Assistant{
		llm:        client,
		weather:    provider,
		transcript: NewTranscript(defaultSystemPrompt),
		tools:      []llm.ToolDef{weatherToolDef()},
		maxTurns:   maxTurns,
	}
}

// SetSystemPrompt overrides the default system prompt. Must be called
// before the first ProcessMessage.
func (a *Assistant) SetSystemPrompt(prompt string) {
	if prompt != "" {
		a.transcript = NewTranscript(prompt)
	}
}

// ProcessMessage appends the user's message and runs the interaction loop
// to completion: stream a model turn, execute a requested tool call and
// go around again, or stop on a plain-text answer. Output reaches the
// user through the callbacks; the returned error, if any, ended the
// exchange (the transcript stays valid either way).
func (a *Assistant) ProcessMessage(ctx context.Context, userText string) error {
	if err := a.transcript.Append(llm.UserMessage(userText)); err != nil {
		return err
	}

	for turn := 0; turn < a.maxTurns; turn++ {
		resp, err := a.llm.ChatCompletionStream(ctx, a.transcript.Messages(), a.tools, a.OnTextDelta)
		if err != nil {
			return fmt.Errorf("model turn: %w", err)
		}

		msg := resp.Message
		if err := a.transcript.Append(msg); err != nil {
			return err
		}

		if len(msg.ToolCalls) == 0 {
			// Plain-text answer: the exchange is complete.
			return nil
		}

		// The schema packs every requested city into one call, so only
		// the first assembled invocation is executed; the rest stay in
		// the transcript unexecuted.
		tc := msg.ToolCalls[0]
		if a.OnToolCall != nil {
			a.OnToolCall(tc.Name, tc.Arguments)
		}

		result := a.executeToolCall(ctx, tc)

		if a.OnToolResult != nil {
			a.OnToolResult(tc.Name, result.Content)
		}

		if err := a.transcript.Append(result); err != nil {
			return err
		}
	}

	return fmt.Errorf("conversation reached max turns (%d) without a final response", a.maxTurns)
}

// Transcript exposes the conversation log (for /history display).
func (a *Assistant) Transcript() *Transcript {
	return a.transcript
}

// Reset clears the conversation, keeping the system prompt.
func (a *Assistant) Reset() {
	a.transcript.Reset()
}
