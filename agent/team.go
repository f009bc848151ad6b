package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/taxotools/semalign/types"
)

// TeamWorker wraps a nested orchestration loop behind the plain Worker
// interface: the outer supervisor routes to the team like any other
// worker, and the team's inner loop runs its own sub-roster to
// completion before handing one synthesized message back. The inner
// loop carries its own independent step budget; inner exhaustion fails
// closed and surfaces as a worker error on the outer loop.
type TeamWorker struct {
	desc   WorkerDescriptor
	inner  *Loop
	logger *zap.Logger
}

// NewTeamWorker creates a team worker running the given inner loop.
func NewTeamWorker(desc WorkerDescriptor, inner *Loop, logger *zap.Logger) *TeamWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeamWorker{
		desc:   desc,
		inner:  inner,
		logger: logger.With(zap.String("component", "worker.team"), zap.String("team", desc.Name)),
	}
}

func (w *TeamWorker) Descriptor() WorkerDescriptor { return w.desc }

// Invoke seeds the inner loop with the outer conversation and returns
// its final message. The inner turn's intermediate messages stay inside
// the team; only the synthesized answer crosses back.
func (w *TeamWorker) Invoke(ctx context.Context, state types.ConversationState) (types.Message, error) {
	w.logger.Debug("team run started", zap.Int("history", len(state.Messages)))
	msg, err := w.inner.RunTurn(ctx, types.NewConversationState(state.Messages...))
	if err != nil {
		w.logger.Warn("team run failed", zap.Error(err))
		return types.Message{}, err
	}
	return types.NewAssistantMessage(msg.Content), nil
}
