package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taxotools/semalign/llm"
	"github.com/taxotools/semalign/search"
	"github.com/taxotools/semalign/skos"
	"github.com/taxotools/semalign/types"
)

// answerUnavailable is the sentinel a grounded chat answer uses when the
// retrieved context does not cover the question. Seeing it triggers a
// fallback completion from the oracle's own knowledge.
const answerUnavailable = "NOT_AVAILABLE"

// SearchWorker queries the reference concept index with the turn's user
// question and reports the ranked matches to the conversation.
type SearchWorker struct {
	index  search.Index
	top    int
	logger *zap.Logger
}

// NewSearchWorker creates a search worker returning up to top results
// per invocation (0 means 5).
func NewSearchWorker(index search.Index, top int, logger *zap.Logger) *SearchWorker {
	if top <= 0 {
		top = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchWorker{
		index:  index,
		top:    top,
		logger: logger.With(zap.String("component", "worker.search")),
	}
}

func (w *SearchWorker) Descriptor() WorkerDescriptor {
	return WorkerDescriptor{
		Name:        "search",
		Description: "Searches the reference concept index and reports matching concepts with their definitions.",
		Rule:        "If the request asks to look up, find, or compare concepts in the reference index, route to search.",
	}
}

func (w *SearchWorker) Invoke(ctx context.Context, state types.ConversationState) (types.Message, error) {
	user, ok := state.LastUser()
	if !ok {
		return types.Message{}, types.NewError(types.ErrInvalidRequest, "no user message to search for")
	}

	results, err := w.index.Search(ctx, search.Query{Text: user.Content, Top: w.top})
	if err != nil {
		return types.Message{}, err
	}
	if len(results) == 0 {
		return types.NewAssistantMessage("No matching concepts found in the reference index."), nil
	}

	var b strings.Builder
	b.WriteString("Reference index matches:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s [%s]\n", i+1, r.LabelDefinition, r.URI)
	}
	w.logger.Debug("index searched", zap.Int("results", len(results)))
	return types.NewAssistantMessage(strings.TrimRight(b.String(), "\n")), nil
}

const chatGroundedSystem = `You are a taxonomy assistant. Answer the user's question using ONLY the conversation so far, including any reference index matches reported by other workers. If the conversation does not contain the information needed, respond with exactly ` + answerUnavailable + ` and nothing else.`

const chatOpenSystem = `You are a taxonomy assistant. Answer the user's question from your own knowledge, concisely.`

// ChatWorker answers the user's question grounded on the conversation.
// When the grounded completion reports the sentinel, it retries once
// from the oracle's own knowledge instead of returning an empty answer.
type ChatWorker struct {
	oracle llm.Oracle
	model  string
	logger *zap.Logger
}

// NewChatWorker creates a chat worker.
func NewChatWorker(oracle llm.Oracle, model string, logger *zap.Logger) *ChatWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatWorker{
		oracle: oracle,
		model:  model,
		logger: logger.With(zap.String("component", "worker.chat")),
	}
}

func (w *ChatWorker) Descriptor() WorkerDescriptor {
	return WorkerDescriptor{
		Name:        "chat",
		Description: "Answers the user's question in natural language, using index matches already in the conversation when present.",
		Rule:        "If search already reported matches, or the request needs a prose answer, route to chat.",
	}
}

func (w *ChatWorker) Invoke(ctx context.Context, state types.ConversationState) (types.Message, error) {
	answer, err := w.complete(ctx, chatGroundedSystem, state)
	if err != nil {
		return types.Message{}, err
	}
	if strings.Contains(answer, answerUnavailable) {
		w.logger.Debug("grounded answer unavailable, falling back to open completion")
		answer, err = w.complete(ctx, chatOpenSystem, state)
		if err != nil {
			return types.Message{}, err
		}
	}
	return types.NewAssistantMessage(answer), nil
}

func (w *ChatWorker) complete(ctx context.Context, system string, state types.ConversationState) (string, error) {
	messages := make([]llm.ChatMessage, 0, len(state.Messages)+1)
	messages = append(messages, llm.ChatMessage{Role: llm.RoleSystem, Content: system})
	messages = append(messages, FlattenHistory(state.Messages)...)

	resp, err := w.oracle.Completion(ctx, &llm.ChatRequest{Model: w.model, Messages: messages})
	if err != nil {
		return "", err
	}
	return llm.FirstText(resp)
}

const editorSystem = `You translate taxonomy editing requests into a single JSON command. Respond with ONLY a JSON object, no prose, of the form:
{"action": "add" | "remove", "uri": "<concept uri>", "label": "<preferred label>", "definition": "<definition>", "broader": "<parent uri>"}
For "remove", only "uri" is required. For "add", "uri" and "label" are required; "definition" and "broader" are optional.`

// editCommand is the structured command decoded from the oracle's
// answer; out-of-set actions are rejected, never improvised.
type editCommand struct {
	Action     string `json:"action"`
	URI        string `json:"uri"`
	Label      string `json:"label,omitempty"`
	Definition string `json:"definition,omitempty"`
	Broader    string `json:"broader,omitempty"`
}

// EditorWorker applies add/remove concept edits to the taxonomy store.
// The oracle turns the user's request into a structured command, which
// is validated before touching the store.
type EditorWorker struct {
	oracle llm.Oracle
	store  *skos.Store
	model  string
	lang   string
	logger *zap.Logger
}

// NewEditorWorker creates a taxonomy editor over the given store. lang
// tags labels written by add commands (empty means "en").
func NewEditorWorker(oracle llm.Oracle, store *skos.Store, model, lang string, logger *zap.Logger) *EditorWorker {
	if lang == "" {
		lang = "en"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditorWorker{
		oracle: oracle,
		store:  store,
		model:  model,
		lang:   lang,
		logger: logger.With(zap.String("component", "worker.editor")),
	}
}

func (w *EditorWorker) Descriptor() WorkerDescriptor {
	return WorkerDescriptor{
		Name:        "taxonomy_editor",
		Description: "Adds concepts to or removes concepts from the working taxonomy.",
		Rule:        "If the request asks to add, create, remove, or delete a taxonomy concept, route to taxonomy_editor.",
	}
}

func (w *EditorWorker) Invoke(ctx context.Context, state types.ConversationState) (types.Message, error) {
	user, ok := state.LastUser()
	if !ok {
		return types.Message{}, types.NewError(types.ErrInvalidRequest, "no user message to act on")
	}

	resp, err := w.oracle.Completion(ctx, &llm.ChatRequest{
		Model: w.model,
		Messages: []llm.ChatMessage{
			{Role: llm.RoleSystem, Content: editorSystem},
			{Role: llm.RoleUser, Content: user.Content},
		},
	})
	if err != nil {
		return types.Message{}, err
	}
	text, err := llm.FirstText(resp)
	if err != nil {
		return types.Message{}, err
	}

	cmd, err := decodeEditCommand(text)
	if err != nil {
		return types.Message{}, err
	}

	switch cmd.Action {
	case "add":
		concept := skos.Concept{
			URI:        cmd.URI,
			PrefLabels: skos.LabelSet{w.lang: []string{cmd.Label}},
		}
		if cmd.Definition != "" {
			concept.Definitions = skos.LabelSet{w.lang: []string{cmd.Definition}}
		}
		if cmd.Broader != "" {
			concept.Broader = []string{cmd.Broader}
		}
		if err := w.store.AddConcept(concept); err != nil {
			return types.Message{}, err
		}
		w.logger.Info("concept added", zap.String("uri", cmd.URI))
		return types.NewAssistantMessage(fmt.Sprintf("Added concept %q (%s) to the taxonomy.", cmd.Label, cmd.URI)), nil
	case "remove":
		if err := w.store.RemoveConcept(cmd.URI); err != nil {
			return types.Message{}, err
		}
		w.logger.Info("concept removed", zap.String("uri", cmd.URI))
		return types.NewAssistantMessage(fmt.Sprintf("Removed concept %s from the taxonomy.", cmd.URI)), nil
	default:
		return types.Message{}, types.NewErrorf(types.ErrInvalidRequest,
			"unknown edit action %q", cmd.Action)
	}
}

func decodeEditCommand(text string) (editCommand, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	var cmd editCommand
	if err := json.Unmarshal([]byte(text), &cmd); err != nil {
		return editCommand{}, types.NewError(types.ErrInvalidRequest,
			"edit command is not valid JSON").WithCause(err)
	}
	if cmd.URI == "" {
		return editCommand{}, types.NewError(types.ErrInvalidRequest, "edit command missing uri")
	}
	if cmd.Action == "add" && cmd.Label == "" {
		return editCommand{}, types.NewError(types.ErrInvalidRequest, "add command missing label")
	}
	return cmd, nil
}
