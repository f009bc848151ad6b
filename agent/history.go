package agent

import (
	"github.com/taxotools/semalign/llm"
	"github.com/taxotools/semalign/types"
)

// FlattenHistory converts conversation-state messages to oracle wire
// messages. Worker messages become assistant messages carrying the
// worker's name so routing decisions can see who already acted.
func FlattenHistory(messages []types.Message) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(messages))
	for _, m := range messages {
		cm := llm.ChatMessage{Content: m.Content}
		switch m.Role {
		case types.RoleUser:
			cm.Role = llm.RoleUser
		case types.RoleWorker:
			cm.Role = llm.RoleAssistant
			cm.Name = m.Name
		default:
			cm.Role = llm.RoleAssistant
		}
		out = append(out, cm)
	}
	return out
}

// TrimHistory drops the oldest messages until the history fits the token
// budget. The first message is always kept: it anchors the turn's
// original request. When even that plus the newest message exceed the
// budget they are still returned, callers get a best effort, never an
// empty history.
func TrimHistory(tokenizer llm.Tokenizer, history []llm.ChatMessage, maxTokens int) []llm.ChatMessage {
	if len(history) <= 2 {
		return history
	}
	total, err := tokenizer.CountMessages(history)
	if err != nil || total <= maxTokens {
		return history
	}

	head := history[0]
	tail := history[1:]
	for len(tail) > 1 {
		tail = tail[1:]
		trimmed := append([]llm.ChatMessage{head}, tail...)
		total, err = tokenizer.CountMessages(trimmed)
		if err != nil || total <= maxTokens {
			return trimmed
		}
	}
	return []llm.ChatMessage{head, tail[0]}
}
