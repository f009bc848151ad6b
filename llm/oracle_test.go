package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstText(t *testing.T) {
	t.Parallel()

	resp := &ChatResponse{
		Model: "gpt-4o",
		Choices: []ChatChoice{
			{Message: ChatMessage{Role: RoleAssistant, Content: "  research_team \n"}},
			{Message: ChatMessage{Role: RoleAssistant, Content: "ignored"}},
		},
	}

	text, err := FirstText(resp)
	require.NoError(t, err)
	assert.Equal(t, "research_team", text)
}

func TestFirstText_Empty(t *testing.T) {
	t.Parallel()

	_, err := FirstText(nil)
	assert.Error(t, err)

	_, err = FirstText(&ChatResponse{})
	assert.Error(t, err)
}

func TestEstimatorTokenizer(t *testing.T) {
	t.Parallel()

	est := NewEstimatorTokenizer(0)
	assert.Equal(t, 8192, est.MaxTokens())

	n, err := est.CountTokens("abcdefgh")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, err := est.CountMessages([]ChatMessage{
		{Role: RoleUser, Content: "abcd"},
		{Role: RoleAssistant, Content: "efgh"},
	})
	require.NoError(t, err)
	// two messages: (1+4)*2 + conversation-end 3
	assert.Equal(t, 13, total)
}

func TestTiktokenTokenizer_ModelMapping(t *testing.T) {
	t.Parallel()

	tok := NewTiktokenTokenizer("gpt-4o-mini-2024")
	assert.Equal(t, 128000, tok.MaxTokens())
	assert.Equal(t, "tiktoken[o200k_base]", tok.Name())

	unknown := NewTiktokenTokenizer("mystery-model")
	assert.Equal(t, 8192, unknown.MaxTokens())
	assert.Equal(t, "tiktoken[cl100k_base]", unknown.Name())
}
