package agent

import (
	"context"
	"iter"
	"log/slog"
	"unicode"

	"github.com/codeWithHak/sorted/store"
)

// maxToolRounds caps the number of tool-use iterations per turn.
const maxToolRounds = 6

// HistoryMessage is one prior message replayed to the model.
type HistoryMessage struct {
	Role    string
	Content string
}

// Runner drives one agent turn: guardrails, the tool-calling loop against the
// language model, and the final text.
type Runner struct {
	model LanguageModel
	store *store.Store
}

// NewRunner binds a language model to the task store.
func NewRunner(model LanguageModel, st *store.Store) *Runner {
	return &Runner{model: model, store: st}
}

// Run executes one turn and yields its events as a lazy, finite,
// non-restartable sequence. history must already include the new user
// message as its last user-role entry. A yielded error ends the sequence;
// actions committed before the error stay in the ledger.
func (r *Runner) Run(ctx context.Context, history []HistoryMessage, tctx *TurnContext) iter.Seq2[StreamEvent, error] {
	return func(yield func(StreamEvent, error) bool) {
		var latest string
		for i := len(history) - 1; i >= 0; i-- {
			if history[i].Role == "user" {
				latest = history[i].Content
				break
			}
		}
		if CheckInput(latest) {
			slog.Warn("input guardrail tripwire",
				"user", tctx.UserID, "thread", tctx.ThreadID, "input", latest)
			yield(TextDeltaEvent{Delta: inputTripwireMessage}, nil)
			return
		}

		toolset := NewToolset(r.store, tctx)
		defs := ToolDefs()

		messages := make([]map[string]any, 0, len(history)+1)
		messages = append(messages, map[string]any{"role": "system", "content": systemPrompt})
		for _, m := range history {
			messages = append(messages, map[string]any{"role": m.Role, "content": m.Content})
		}

		var final string
		for round := 0; round < maxToolRounds; round++ {
			completion, err := r.model.Complete(ctx, &ChatRequest{Messages: messages, Tools: defs})
			if err != nil {
				yield(nil, err)
				return
			}
			if len(completion.ToolCalls) == 0 {
				final = completion.Content
				break
			}

			messages = append(messages, map[string]any{
				"role":       "assistant",
				"content":    completion.Content,
				"tool_calls": encodeToolCalls(completion.ToolCalls),
			})

			// Some models repeat the same tool_call id in one response.
			seen := make(map[string]bool)
			for _, tc := range completion.ToolCalls {
				if seen[tc.ID] {
					continue
				}
				seen[tc.ID] = true
				if !yield(ToolCallEvent{Name: tc.Name, Input: tc.Arguments}, nil) {
					return
				}
				var result string
				if tool, ok := toolset[tc.Name]; ok {
					res, err := tool.Call(ctx, tc.Arguments)
					if err != nil {
						result = "Error: " + err.Error()
					} else {
						result = res
					}
				} else {
					result = "Unknown tool: " + tc.Name
				}
				slog.Info("[AGENT TOOL RESULT]", "tool", tc.Name, "result", result)
				if !yield(ToolResultEvent{Name: tc.Name, Result: result}, nil) {
					return
				}
				messages = append(messages, map[string]any{
					"role":         "tool",
					"tool_call_id": tc.ID,
					"content":      result,
				})
			}
		}

		if final == "" {
			return
		}
		if kind, tripped := CheckOutput(final, tctx); tripped {
			slog.Warn("output guardrail tripwire",
				"user", tctx.UserID, "thread", tctx.ThreadID,
				"claimed", string(kind), "output", final)
			final = outputTripwireMessage
		}
		for _, chunk := range chunkText(final) {
			if !yield(TextDeltaEvent{Delta: chunk}, nil) {
				return
			}
		}
	}
}

func encodeToolCalls(calls []ToolCall) []map[string]any {
	out := make([]map[string]any, 0, len(calls))
	for _, tc := range calls {
		out = append(out, map[string]any{
			"id":   tc.ID,
			"type": "function",
			"function": map[string]any{
				"name":      tc.Name,
				"arguments": tc.Arguments,
			},
		})
	}
	return out
}

// chunkText splits text into word-sized deltas. Whitespace is preserved, so
// concatenating the chunks reproduces the input exactly.
func chunkText(s string) []string {
	var chunks []string
	start := 0
	inSpace := false
	for i, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
		} else if inSpace {
			chunks = append(chunks, s[start:i])
			start = i
			inSpace = false
		}
	}
	if start < len(s) {
		chunks = append(chunks, s[start:])
	}
	return chunks
}
