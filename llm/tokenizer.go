package llm

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts tokens for history budgeting. The orchestration loop
// uses it to trim old conversation turns before a supervisor call.
type Tokenizer interface {
	CountTokens(text string) (int, error)
	CountMessages(messages []ChatMessage) (int, error)
	MaxTokens() int
	Name() string
}

var modelEncodings = map[string]struct {
	encoding  string
	maxTokens int
}{
	"gpt-4o":      {encoding: "o200k_base", maxTokens: 128000},
	"gpt-4o-mini": {encoding: "o200k_base", maxTokens: 128000},
	"gpt-4-turbo": {encoding: "cl100k_base", maxTokens: 128000},
	"gpt-4":       {encoding: "cl100k_base", maxTokens: 8192},
}

// TiktokenTokenizer adapts tiktoken for OpenAI-family models.
type TiktokenTokenizer struct {
	model     string
	encoding  string
	maxTokens int
	enc       *tiktoken.Tiktoken
	once      sync.Once
	initErr   error
}

// NewTiktokenTokenizer creates a tiktoken-backed tokenizer for the given
// model, falling back to cl100k_base for unknown models.
func NewTiktokenTokenizer(model string) *TiktokenTokenizer {
	info, ok := modelEncodings[model]
	if !ok {
		for prefix, i := range modelEncodings {
			if len(model) >= len(prefix) && model[:len(prefix)] == prefix {
				info = i
				ok = true
				break
			}
		}
	}
	if !ok {
		info = struct {
			encoding  string
			maxTokens int
		}{encoding: "cl100k_base", maxTokens: 8192}
	}
	return &TiktokenTokenizer{
		model:     model,
		encoding:  info.encoding,
		maxTokens: info.maxTokens,
	}
}

// init lazily initializes the encoding (may download BPE data on first use).
func (t *TiktokenTokenizer) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("init tiktoken encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

func (t *TiktokenTokenizer) CountTokens(text string) (int, error) {
	if err := t.init(); err != nil {
		return 0, err
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}

func (t *TiktokenTokenizer) CountMessages(messages []ChatMessage) (int, error) {
	if err := t.init(); err != nil {
		return 0, err
	}
	total := 0
	for _, msg := range messages {
		// per-message overhead: <|start|>role\n content<|end|>\n
		total += 4
		total += len(t.enc.Encode(msg.Content, nil, nil))
		total += len(t.enc.Encode(string(msg.Role), nil, nil))
	}
	total += 3 // conversation-end overhead
	return total, nil
}

func (t *TiktokenTokenizer) MaxTokens() int { return t.maxTokens }

func (t *TiktokenTokenizer) Name() string {
	return fmt.Sprintf("tiktoken[%s]", t.encoding)
}

// EstimatorTokenizer is a heuristic counter used when tiktoken data is
// unavailable (offline environments, tests).
type EstimatorTokenizer struct {
	maxTokens int
}

// NewEstimatorTokenizer creates an estimator with the given context size
// (0 means 8192).
func NewEstimatorTokenizer(maxTokens int) *EstimatorTokenizer {
	if maxTokens == 0 {
		maxTokens = 8192
	}
	return &EstimatorTokenizer{maxTokens: maxTokens}
}

func (e *EstimatorTokenizer) CountTokens(text string) (int, error) {
	// ~4 characters per token for latin text
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4, nil
}

func (e *EstimatorTokenizer) CountMessages(messages []ChatMessage) (int, error) {
	total := 0
	for _, msg := range messages {
		n, _ := e.CountTokens(msg.Content)
		total += n + 4
	}
	return total + 3, nil
}

func (e *EstimatorTokenizer) MaxTokens() int { return e.maxTokens }

func (e *EstimatorTokenizer) Name() string { return "estimator" }
