package llm

import (
	"strings"
	"testing"
)

func TestAccumulatorSingleCallSplitAcrossFragments(t *testing.T) {
	acc := newAccumulator(nil)

	acc.add(streamFragment{ToolCalls: []toolCallFragment{
		{Index: 0, ID: "call_ab", Name: "get_wea"},
	}})
	acc.add(streamFragment{ToolCalls: []toolCallFragment{
		{Index: 0, ID: "c123", Name: "ther", Arguments: `{"cities": ["Par`},
	}})
	acc.add(streamFragment{ToolCalls: []toolCallFragment{
		{Index: 0, Arguments: `is", "Tokyo"]}`},
	}})

	content, calls := acc.finalize()
	if content != "" {
		t.Errorf("content = %q, want empty", content)
	}
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].ID != "call_abc123" {
		t.Errorf("id = %q, want %q", calls[0].ID, "call_abc123")
	}
	if calls[0].Name != "get_weather" {
		t.Errorf("name = %q, want %q", calls[0].Name, "get_weather")
	}
	if calls[0].Arguments != `{"cities": ["Paris", "Tokyo"]}` {
		t.Errorf("arguments = %q", calls[0].Arguments)
	}
}

func TestAccumulatorInterleavedSlots(t *testing.T) {
	// Fragments for different slots may interleave in any order; only
	// per-slot arrival order matters, and finalize orders by slot index.
	acc := newAccumulator(nil)

	acc.add(streamFragment{ToolCalls: []toolCallFragment{
		{Index: 1, ID: "call_b", Name: "second"},
	}})
	acc.add(streamFragment{ToolCalls: []toolCallFragment{
		{Index: 0, ID: "call_a", Name: "first", Arguments: `{"x":`},
	}})
	acc.add(streamFragment{ToolCalls: []toolCallFragment{
		{Index: 1, Arguments: `{}`},
		{Index: 0, Arguments: `1}`},
	}})

	_, calls := acc.finalize()
	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}
	if calls[0].Name != "first" || calls[1].Name != "second" {
		t.Errorf("order = [%s, %s], want [first, second]", calls[0].Name, calls[1].Name)
	}
	if calls[0].Arguments != `{"x":1}` {
		t.Errorf("slot 0 arguments = %q, want %q", calls[0].Arguments, `{"x":1}`)
	}
}

func TestAccumulatorStreamsContentToHandler(t *testing.T) {
	var deltas []string
	acc := newAccumulator(func(delta string) {
		deltas = append(deltas, delta)
	})

	acc.add(streamFragment{Content: "Hello"})
	acc.add(streamFragment{Content: ", world"})
	acc.add(streamFragment{}) // empty fragments are silent

	content, calls := acc.finalize()
	if content != "Hello, world" {
		t.Errorf("content = %q, want %q", content, "Hello, world")
	}
	if calls != nil {
		t.Errorf("calls = %v, want nil", calls)
	}
	if got := strings.Join(deltas, "|"); got != "Hello|, world" {
		t.Errorf("handler deltas = %q", got)
	}
}

func TestAccumulatorGeneratesMissingID(t *testing.T) {
	acc := newAccumulator(nil)
	acc.add(streamFragment{ToolCalls: []toolCallFragment{
		{Index: 0, Name: "get_weather", Arguments: "{}"},
	}})

	_, calls := acc.finalize()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if !strings.HasPrefix(calls[0].ID, "call_") || len(calls[0].ID) <= len("call_") {
		t.Errorf("expected generated id, got %q", calls[0].ID)
	}
}
