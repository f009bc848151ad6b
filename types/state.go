package types

// FinishMarker is the terminal routing decision: the supervisor has
// judged the turn complete and the loop should extract the final answer.
const FinishMarker = "FINISH"

// ConversationState is the shared record driven through one orchestration
// turn. The loop is its sole owner for the duration of a run; workers
// receive a read view and hand back a single new Message instead of
// mutating the state in place.
type ConversationState struct {
	Messages []Message `json:"messages"`
	// Next holds the most recent routing decision: a roster worker name,
	// the FinishMarker, or empty before the first decision.
	Next string `json:"next,omitempty"`
}

// NewConversationState seeds a state with prior history, if any.
func NewConversationState(history ...Message) ConversationState {
	s := ConversationState{}
	if len(history) > 0 {
		s.Messages = append(s.Messages, history...)
	}
	return s
}

// Append returns a new state with the message added. The receiver is
// left untouched; appends are the only mutation a state ever sees.
func (s ConversationState) Append(m Message) ConversationState {
	messages := make([]Message, 0, len(s.Messages)+1)
	messages = append(messages, s.Messages...)
	messages = append(messages, m)
	return ConversationState{Messages: messages, Next: s.Next}
}

// Last returns the most recent message, or false when the state is empty.
func (s ConversationState) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// LastUser returns the most recent user message, or false when there is
// none.
func (s ConversationState) LastUser() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// Clone returns a deep copy, used to hand workers an isolated read view.
func (s ConversationState) Clone() ConversationState {
	out := ConversationState{Next: s.Next}
	if len(s.Messages) > 0 {
		out.Messages = make([]Message, len(s.Messages))
		copy(out.Messages, s.Messages)
	}
	return out
}
