package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taxotools/semalign/llm"
	"github.com/taxotools/semalign/types"
)

// Router decides which worker acts next on a conversation state, or
// types.FinishMarker when the turn is complete. last carries the name of
// the worker that acted in the previous step, empty on the first one.
type Router interface {
	Route(ctx context.Context, state types.ConversationState, last string) (string, error)
}

const supervisorSystemTemplate = `You are a supervisor coordinating a conversation between a user and the following workers:

%s

Decision rules:
%s- Never route to the same worker twice in direct succession.
- When the user's request is fully answered, respond with FINISH.

Given the conversation so far, respond with exactly one value: the name of the worker that should act next, or FINISH. Respond with that single value and nothing else.`

// SupervisorConfig configures a Supervisor.
type SupervisorConfig struct {
	Model       string
	Temperature float32
	// MaxHistoryTokens caps the conversation history sent with each
	// routing prompt (0 disables trimming).
	MaxHistoryTokens int
}

// Supervisor is the routing state machine. It delegates the choice to
// the reasoning oracle, constrained to the roster plus FINISH, and
// validates the decoded answer against that set. A decision that
// violates the no-immediate-repeat rule, or falls outside the set, gets
// one corrective re-prompt before the supervisor gives up on it.
type Supervisor struct {
	oracle    llm.Oracle
	roster    []WorkerDescriptor
	tokenizer llm.Tokenizer
	cfg       SupervisorConfig
	system    string
	logger    *zap.Logger
}

// NewSupervisor builds a supervisor over a fixed roster. The roster is
// rendered once into the system instruction; it is not reconfigured
// mid-run.
func NewSupervisor(oracle llm.Oracle, roster []WorkerDescriptor, tokenizer llm.Tokenizer, cfg SupervisorConfig, logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{
		oracle:    oracle,
		roster:    roster,
		tokenizer: tokenizer,
		cfg:       cfg,
		system:    renderSystem(roster),
		logger:    logger.With(zap.String("component", "supervisor")),
	}
}

func renderSystem(roster []WorkerDescriptor) string {
	var workers, rules strings.Builder
	for _, d := range roster {
		fmt.Fprintf(&workers, "- %s: %s\n", d.Name, d.Description)
		if d.Rule != "" {
			fmt.Fprintf(&rules, "- %s\n", d.Rule)
		}
	}
	return fmt.Sprintf(supervisorSystemTemplate,
		strings.TrimRight(workers.String(), "\n"), rules.String())
}

// Route asks the oracle for the next worker. The decoded answer must be
// a roster name or FINISH; anything else, and any immediate repeat of
// last, triggers a single corrective re-prompt. A second out-of-set
// answer is a routing-protocol failure. A second repeat is tolerated
// with a warning: the step budget remains the structural safeguard
// against oscillation.
func (s *Supervisor) Route(ctx context.Context, state types.ConversationState, last string) (string, error) {
	messages := s.buildMessages(state)

	decision, err := s.ask(ctx, messages)
	if err != nil {
		return "", err
	}

	name, ok := s.decode(decision)
	if !ok {
		s.logger.Warn("routing answer outside roster, re-prompting", zap.String("answer", decision))
		messages = append(messages,
			llm.ChatMessage{Role: llm.RoleAssistant, Content: decision},
			llm.ChatMessage{Role: llm.RoleUser, Content: s.correction()},
		)
		decision, err = s.ask(ctx, messages)
		if err != nil {
			return "", err
		}
		name, ok = s.decode(decision)
		if !ok {
			return "", types.NewErrorf(types.ErrRoutingProtocol,
				"oracle routed to %q, not in roster", decision)
		}
	}

	if name != types.FinishMarker && name == last {
		s.logger.Warn("immediate repeat routing decision, re-prompting", zap.String("worker", name))
		messages = append(messages,
			llm.ChatMessage{Role: llm.RoleAssistant, Content: decision},
			llm.ChatMessage{Role: llm.RoleUser, Content: fmt.Sprintf(
				"Worker %s just acted. Route to a different worker, or FINISH if the request is answered. Respond with that single value only.", last)},
		)
		decision, err = s.ask(ctx, messages)
		if err != nil {
			return "", err
		}
		repeat, ok := s.decode(decision)
		if !ok {
			return "", types.NewErrorf(types.ErrRoutingProtocol,
				"oracle routed to %q, not in roster", decision)
		}
		if repeat == last {
			s.logger.Warn("oracle insists on repeat routing", zap.String("worker", repeat))
		}
		name = repeat
	}

	s.logger.Debug("routing decision", zap.String("next", name))
	return name, nil
}

func (s *Supervisor) ask(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	resp, err := s.oracle.Completion(ctx, &llm.ChatRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
		MaxTokens:   16,
	})
	if err != nil {
		return "", err
	}
	return llm.FirstText(resp)
}

func (s *Supervisor) buildMessages(state types.ConversationState) []llm.ChatMessage {
	history := FlattenHistory(state.Messages)
	if s.cfg.MaxHistoryTokens > 0 && s.tokenizer != nil {
		history = TrimHistory(s.tokenizer, history, s.cfg.MaxHistoryTokens)
	}
	messages := make([]llm.ChatMessage, 0, len(history)+1)
	messages = append(messages, llm.ChatMessage{Role: llm.RoleSystem, Content: s.system})
	return append(messages, history...)
}

func (s *Supervisor) correction() string {
	names := make([]string, 0, len(s.roster)+1)
	for _, d := range s.roster {
		names = append(names, d.Name)
	}
	names = append(names, types.FinishMarker)
	return fmt.Sprintf("That is not a valid answer. Respond with exactly one of: %s.",
		strings.Join(names, ", "))
}

// decode normalizes the oracle's free-text answer and matches it against
// the roster plus FINISH. Out-of-set values are rejected, never trusted.
func (s *Supervisor) decode(answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if i := strings.IndexByte(answer, '\n'); i >= 0 {
		answer = answer[:i]
	}
	answer = strings.Trim(answer, " \t\"'`.:")
	if strings.EqualFold(answer, types.FinishMarker) {
		return types.FinishMarker, true
	}
	for _, d := range s.roster {
		if strings.EqualFold(answer, d.Name) {
			return d.Name, true
		}
	}
	return "", false
}
