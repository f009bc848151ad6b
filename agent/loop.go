package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/taxotools/semalign/internal/metrics"
	"github.com/taxotools/semalign/types"
)

// DefaultStepBudget bounds supervisor decisions per turn. Exhausting it
// converts a non-terminating routing cycle into a reported failure.
const DefaultStepBudget = 100

// Loop drives supervisor and worker alternation over one conversation
// state until the supervisor answers FINISH or the step budget runs out.
// The loop owns the state for the duration of a run; workers only ever
// see isolated read views.
type Loop struct {
	router  Router
	workers map[string]Worker
	budget  int
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *metrics.Collector
}

// LoopOption customizes a Loop.
type LoopOption func(*Loop)

// WithStepBudget overrides the step budget (supervisor decisions per
// run). Non-positive values are ignored.
func WithStepBudget(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.budget = n
		}
	}
}

// WithMetrics wires a metrics collector into the loop.
func WithMetrics(m *metrics.Collector) LoopOption {
	return func(l *Loop) {
		l.metrics = m
	}
}

// NewLoop builds an orchestration loop over a fixed set of workers. The
// router's roster and the worker set must agree; the loop indexes
// workers by descriptor name.
func NewLoop(router Router, workers []Worker, logger *zap.Logger, opts ...LoopOption) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]Worker, len(workers))
	for _, w := range workers {
		byName[w.Descriptor().Name] = w
	}
	l := &Loop{
		router:  router,
		workers: byName,
		budget:  DefaultStepBudget,
		logger:  logger.With(zap.String("component", "loop")),
		tracer:  otel.Tracer("semalign/agent"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes one orchestration turn. Each step is one routing decision
// followed, unless terminal, by one worker invocation appending exactly
// one message. The returned state carries the full turn history; the
// final answer is its last message.
func (l *Loop) Run(ctx context.Context, state types.ConversationState) (types.ConversationState, error) {
	turnID := uuid.NewString()
	ctx, span := l.tracer.Start(ctx, "agent.turn",
		trace.WithAttributes(attribute.String("turn.id", turnID)))
	defer span.End()

	logger := l.logger.With(zap.String("turn", turnID))
	logger.Info("turn started", zap.Int("history", len(state.Messages)))

	last := ""
	for step := 1; step <= l.budget; step++ {
		next, err := l.router.Route(ctx, state, last)
		if err != nil {
			logger.Error("routing failed", zap.Int("step", step), zap.Error(err))
			return state, err
		}
		state.Next = next
		l.metrics.RecordRoutingDecision(next)

		if next == types.FinishMarker {
			l.metrics.RecordTurnSteps(step)
			logger.Info("turn finished", zap.Int("steps", step))
			return state, nil
		}

		worker, ok := l.workers[next]
		if !ok {
			// the router validated against its roster; a miss here means
			// roster and worker set disagree
			return state, types.NewErrorf(types.ErrRoutingProtocol,
				"routed to unknown worker %q", next)
		}

		start := time.Now()
		msg, err := worker.Invoke(ctx, state.Clone())
		if err != nil {
			l.metrics.RecordWorkerInvocation(next, "error", time.Since(start))
			logger.Error("worker failed", zap.String("worker", next), zap.Error(err))
			return state, types.NewErrorf(types.ErrWorkerFailed,
				"worker %s failed", next).WithCause(err)
		}
		l.metrics.RecordWorkerInvocation(next, "ok", time.Since(start))

		msg.Role = types.RoleWorker
		msg.Name = next
		state = state.Append(msg)
		last = next
		logger.Debug("worker acted", zap.String("worker", next), zap.Int("step", step))
	}

	l.metrics.RecordTurnSteps(l.budget)
	return state, types.NewErrorf(types.ErrBudgetExceeded,
		"step budget of %d exhausted without reaching FINISH", l.budget)
}

// RunTurn executes one turn and extracts the final message, the answer
// authored by the last worker that acted before the FINISH decision.
func (l *Loop) RunTurn(ctx context.Context, state types.ConversationState) (types.Message, error) {
	final, err := l.Run(ctx, state)
	if err != nil {
		return types.Message{}, err
	}
	msg, ok := final.Last()
	if !ok {
		return types.Message{}, types.NewError(types.ErrRoutingProtocol,
			"turn finished without any worker output")
	}
	return msg, nil
}
