package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxotools/semalign/types"
)

func TestTeamWorker_RunsInnerLoop(t *testing.T) {
	t.Parallel()

	inner := NewLoop(
		scriptedRouter(t, "summarize", types.FinishMarker),
		[]Worker{echoWorker("summarize")},
		zap.NewNop(),
	)
	team := NewTeamWorker(WorkerDescriptor{
		Name:        "research_team",
		Description: "Researches a question with its own search and summarize workers.",
	}, inner, zap.NewNop())

	outer := NewLoop(
		scriptedRouter(t, "research_team", types.FinishMarker),
		[]Worker{team},
		zap.NewNop(),
	)

	final, err := outer.Run(context.Background(),
		types.NewConversationState(types.NewUserMessage("research airports")))
	require.NoError(t, err)

	// only the synthesized answer crosses back to the outer state
	require.Len(t, final.Messages, 2)
	last, _ := final.Last()
	assert.Equal(t, "research_team", last.Name)
	assert.Equal(t, "output from summarize", last.Content)
}

func TestTeamWorker_InnerBudgetFailsClosed(t *testing.T) {
	t.Parallel()

	spin := routerFunc(func(_ context.Context, _ types.ConversationState, _ string) (string, error) {
		return "echo", nil
	})
	inner := NewLoop(spin, []Worker{echoWorker("echo")}, zap.NewNop(), WithStepBudget(2))
	team := NewTeamWorker(WorkerDescriptor{Name: "stuck_team"}, inner, zap.NewNop())

	outer := NewLoop(
		scriptedRouter(t, "stuck_team"),
		[]Worker{team},
		zap.NewNop(),
		WithStepBudget(50),
	)

	_, err := outer.Run(context.Background(),
		types.NewConversationState(types.NewUserMessage("go")))
	require.Error(t, err)
	// inner exhaustion surfaces as a worker failure on the outer loop
	assert.Equal(t, types.ErrWorkerFailed, types.GetErrorCode(err))
	assert.Equal(t, types.ErrBudgetExceeded, types.GetErrorCode(
		err.(*types.Error).Cause))
}

func TestTeamWorker_IndependentBudgets(t *testing.T) {
	t.Parallel()

	innerSteps := 0
	worker := WorkerFunc{
		Desc: WorkerDescriptor{Name: "count"},
		Fn: func(_ context.Context, _ types.ConversationState) (types.Message, error) {
			innerSteps++
			return types.NewAssistantMessage("counted"), nil
		},
	}
	inner := NewLoop(
		scriptedRouter(t, "count", "count", types.FinishMarker),
		[]Worker{worker},
		zap.NewNop(),
		WithStepBudget(10),
	)
	team := NewTeamWorker(WorkerDescriptor{Name: "team"}, inner, zap.NewNop())

	// outer budget of 2 still admits an inner run taking 3 decisions
	outer := NewLoop(
		scriptedRouter(t, "team", types.FinishMarker),
		[]Worker{team},
		zap.NewNop(),
		WithStepBudget(2),
	)

	_, err := outer.Run(context.Background(),
		types.NewConversationState(types.NewUserMessage("go")))
	require.NoError(t, err)
	assert.Equal(t, 2, innerSteps)
}
