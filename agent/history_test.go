package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxotools/semalign/llm"
	"github.com/taxotools/semalign/types"
)

func TestFlattenHistory(t *testing.T) {
	t.Parallel()

	flat := FlattenHistory([]types.Message{
		types.NewUserMessage("question"),
		types.NewWorkerMessage("search", "results"),
		types.NewAssistantMessage("answer"),
	})

	require.Len(t, flat, 3)
	assert.Equal(t, llm.RoleUser, flat[0].Role)
	assert.Equal(t, llm.RoleAssistant, flat[1].Role)
	assert.Equal(t, "search", flat[1].Name)
	assert.Equal(t, llm.RoleAssistant, flat[2].Role)
	assert.Empty(t, flat[2].Name)
}

func TestTrimHistory_UnderBudgetUntouched(t *testing.T) {
	t.Parallel()

	history := []llm.ChatMessage{
		{Role: llm.RoleUser, Content: "short"},
		{Role: llm.RoleAssistant, Content: "reply"},
		{Role: llm.RoleUser, Content: "more"},
	}
	out := TrimHistory(llm.NewEstimatorTokenizer(0), history, 1000)
	assert.Equal(t, history, out)
}

func TestTrimHistory_DropsOldestKeepsAnchor(t *testing.T) {
	t.Parallel()

	history := []llm.ChatMessage{
		{Role: llm.RoleUser, Content: "anchor request"},
		{Role: llm.RoleAssistant, Content: strings.Repeat("x", 800)},
		{Role: llm.RoleAssistant, Content: strings.Repeat("y", 800)},
		{Role: llm.RoleUser, Content: "latest"},
	}
	out := TrimHistory(llm.NewEstimatorTokenizer(0), history, 30)

	require.Len(t, out, 2)
	assert.Equal(t, "anchor request", out[0].Content)
	assert.Equal(t, "latest", out[1].Content)
}

func TestTrimHistory_TwoMessagesNeverTrimmed(t *testing.T) {
	t.Parallel()

	history := []llm.ChatMessage{
		{Role: llm.RoleUser, Content: strings.Repeat("a", 4000)},
		{Role: llm.RoleUser, Content: strings.Repeat("b", 4000)},
	}
	out := TrimHistory(llm.NewEstimatorTokenizer(0), history, 10)
	assert.Equal(t, history, out)
}
