package llm

import (
	"sort"

	"github.com/google/uuid"
)

// toolCallFragment is one partial piece of a tool invocation delivered by a
// stream chunk. Index identifies the invocation slot; the remaining fields
// are each optional and carry only the text that arrived in this chunk.
type toolCallFragment struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// streamFragment is one incremental piece of a streamed model response:
// optionally some text content, optionally partial tool-call data.
type streamFragment struct {
	Content   string
	ToolCalls []toolCallFragment
}

// invocation accumulates one in-flight tool call across fragments.
type invocation struct {
	id        string
	name      string
	arguments string
}

// accumulator rebuilds complete tool invocations from fragments scattered
// across stream chunks. A single logical value (the arguments JSON in
// particular) is split arbitrarily across chunks, so every piece must be
// appended in arrival order and is only meaningful once the stream ends.
type accumulator struct {
	content string
	slots   map[int]*invocation
	handler StreamHandler
}

func newAccumulator(handler StreamHandler) *accumulator {
	return &accumulator{
		slots:   make(map[int]*invocation),
		handler: handler,
	}
}

// add consumes one fragment, forwarding text content to the handler as it
// arrives and appending tool-call pieces to their slot's invocation.
func (a *accumulator) add(frag streamFragment) {
	if frag.Content != "" {
		a.content += frag.Content
		if a.handler != nil {
			a.handler(frag.Content)
		}
	}

	for _, tc := range frag.ToolCalls {
		inv, ok := a.slots[tc.Index]
		if !ok {
			inv = &invocation{}
			a.slots[tc.Index] = inv
		}
		inv.id += tc.ID
		inv.name += tc.Name
		inv.arguments += tc.Arguments
	}
}

// finalize returns the accumulated text and the completed invocations
// ordered by ascending slot index. Fragment arrival order across different
// slots is not monotonic, so ordering by index is what restores the
// model's intended call order. Invocations that streamed without an id
// (some OpenAI-compatible backends omit it) get a generated one so the
// tool result can still be paired in the transcript.
func (a *accumulator) finalize() (string, []ToolCall) {
	if len(a.slots) == 0 {
		return a.content, nil
	}

	indexes := make([]int, 0, len(a.slots))
	for idx := range a.slots {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	calls := make([]ToolCall, 0, len(indexes))
	for _, idx := range indexes {
		inv := a.slots[idx]
		id := inv.id
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		calls = append(calls, ToolCall{
			ID:        id,
			Name:      inv.name,
			Arguments: inv.arguments,
		})
	}
	return a.content, calls
}
