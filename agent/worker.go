package agent

import (
	"context"

	"github.com/taxotools/semalign/types"
)

// WorkerDescriptor is one roster entry: the worker's unique name, a
// one-sentence purpose shown to the supervisor oracle, and an optional
// routing rule ("if the request mentions X, route here"). The roster is
// structured configuration, never a hand-built instruction string.
type WorkerDescriptor struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Rule        string `json:"rule,omitempty" yaml:"rule,omitempty"`
}

// Worker is a named, single-capability task executor. Invoke consumes a
// read view of the conversation state and returns exactly one message;
// it must not retain or mutate the state it receives. A Worker may
// itself wrap a nested orchestration loop (see TeamWorker).
type Worker interface {
	Descriptor() WorkerDescriptor
	Invoke(ctx context.Context, state types.ConversationState) (types.Message, error)
}

// WorkerFunc adapts a plain function into a Worker.
type WorkerFunc struct {
	Desc WorkerDescriptor
	Fn   func(ctx context.Context, state types.ConversationState) (types.Message, error)
}

func (w WorkerFunc) Descriptor() WorkerDescriptor { return w.Desc }

func (w WorkerFunc) Invoke(ctx context.Context, state types.ConversationState) (types.Message, error) {
	return w.Fn(ctx, state)
}
