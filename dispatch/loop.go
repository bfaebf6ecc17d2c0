package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ariyan3323/my-ai-bot/llm"
	"github.com/Ariyan3323/my-ai-bot/tools"
)

// errToolRoundsExceeded is returned when the model keeps requesting tools
// past the round cap without producing a plain answer.
var errToolRoundsExceeded = fmt.Errorf("tool call rounds exceeded")

// runToolLoop drives one LLM exchange. Every requested tool call is
// executed against the registry and fed back as a tool observation;
// unknown names produce a structured error payload instead of aborting
// the turn. The loop ends at the first plain-text answer.
func (d *Dispatcher) runToolLoop(ctx context.Context, log *slog.Logger, reg *tools.Registry, messages []llm.Message) (string, []llm.Message, error) {
	decls := reg.Declarations()
	log.Debug("tool_loop_start", "tools", reg.ToolNames())

	for round := 0; round < d.maxToolRounds; round++ {
		if err := ctx.Err(); err != nil {
			return "", messages, err
		}

		start := time.Now()
		log.Debug("llm_call_start", "round", round, "messages", len(messages))
		result, err := d.client.Chat(ctx, llm.Request{
			Model:    d.model,
			Messages: messages,
			Tools:    decls,
		})
		if err != nil {
			log.Error("llm_call_error", "round", round, "error", err.Error())
			return "", messages, fmt.Errorf("llm call failed at round %d: %w", round, err)
		}
		log.Debug("llm_call_done", "round", round, "duration_ms", time.Since(start).Milliseconds())

		if len(result.ToolCalls) == 0 {
			messages = append(messages, llm.Message{Role: "assistant", Content: result.Text})
			return result.Text, messages, nil
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   result.Text,
			ToolCalls: result.ToolCalls,
		})

		for _, call := range result.ToolCalls {
			observation := d.executeTool(ctx, log, reg, call)
			messages = append(messages, llm.Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    observation,
			})
		}
	}

	log.Warn("tool_rounds_exceeded", "max_rounds", d.maxToolRounds)
	return "", messages, errToolRoundsExceeded
}

func (d *Dispatcher) executeTool(ctx context.Context, log *slog.Logger, reg *tools.Registry, call llm.ToolCall) string {
	tool, ok := reg.Get(call.Name)
	if !ok {
		log.Warn("tool_unknown", "tool", call.Name)
		payload, _ := json.Marshal(map[string]string{
			"error": "unknown function",
			"name":  call.Name,
		})
		return string(payload)
	}

	start := time.Now()
	log.Info("tool_call", "tool", call.Name)
	out, err := tool.Execute(ctx, call.Params)
	if err != nil {
		log.Warn("tool_call_error", "tool", call.Name, "error", err.Error())
		return fmt.Sprintf("tool %s failed: %v", call.Name, err)
	}
	log.Debug("tool_call_done", "tool", call.Name, "duration_ms", time.Since(start).Milliseconds())
	return out
}
