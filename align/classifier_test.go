package align

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxotools/semalign/llm"
	"github.com/taxotools/semalign/types"
)

// fakeOracle implements llm.Oracle with a function callback.
type fakeOracle struct {
	completeFn func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
}

func (f *fakeOracle) Name() string { return "fake" }

func (f *fakeOracle) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return f.completeFn(ctx, req)
}

func textResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Model: "fake",
		Choices: []llm.ChatChoice{
			{Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: content}},
		},
	}
}

func TestClassifier_Classify(t *testing.T) {
	t.Parallel()

	var gotPrompt string
	oracle := &fakeOracle{completeFn: func(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
		require.Len(t, req.Messages, 2)
		assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
		gotPrompt = req.Messages[1].Content
		return textResponse(`["exactMatch (0.95)", "none (0.2)"]`), nil
	}}

	c := NewClassifier(oracle, zap.NewNop())
	candidates := []Candidate{
		{LabelDefinition: "Airport (ou Aerodrome): A place where planes land"},
		{LabelDefinition: "Harbor: A place where ships dock"},
	}

	verdicts, err := c.Classify(context.Background(), "Airport", "A place where planes land", candidates)
	require.NoError(t, err)
	require.Len(t, verdicts, 2)
	assert.Equal(t, RelationExactMatch, verdicts[0].Relation)
	assert.Equal(t, 0.95, verdicts[0].Confidence)
	assert.Equal(t, RelationNone, verdicts[1].Relation)

	// the source is Concept 1; candidates are enumerated from Concept 2
	assert.Contains(t, gotPrompt, "Concept 1:")
	assert.Contains(t, gotPrompt, "Concept 2: Airport (ou Aerodrome): A place where planes land")
	assert.Contains(t, gotPrompt, "Concept 3: Harbor: A place where ships dock")
}

func TestClassifier_Classify_NoCandidates(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{completeFn: func(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
		t.Fatal("oracle must not be called without candidates")
		return nil, nil
	}}

	c := NewClassifier(oracle, zap.NewNop())
	verdicts, err := c.Classify(context.Background(), "Airport", "", nil)
	require.NoError(t, err)
	assert.Empty(t, verdicts)
}

func TestClassifier_Classify_WrongLength(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{completeFn: func(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
		return textResponse(`["exactMatch (0.95)"]`), nil
	}}

	c := NewClassifier(oracle, zap.NewNop())
	_, err := c.Classify(context.Background(), "Airport", "", []Candidate{
		{LabelDefinition: "a"}, {LabelDefinition: "b"},
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrClassificationProtocol, types.GetErrorCode(err))
}

func TestClassifier_Classify_OracleFailurePropagates(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{completeFn: func(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
		return nil, types.NewError(types.ErrServiceUnavailable, "oracle down").WithService("azure-openai")
	}}

	c := NewClassifier(oracle, zap.NewNop())
	_, err := c.Classify(context.Background(), "Airport", "", []Candidate{{LabelDefinition: "a"}})
	require.Error(t, err)
	// remote failures keep their service code, never masked as "no match"
	assert.Equal(t, types.ErrServiceUnavailable, types.GetErrorCode(err))
}
