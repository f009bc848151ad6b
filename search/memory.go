package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// MemoryIndex is an in-process Index for tests and small deployments.
// Scoring is plain token overlap between the query and the combined
// label-definition text; ties keep insertion order so ranking stays
// deterministic.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries []Result
	logger  *zap.Logger
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex(logger *zap.Logger) *MemoryIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryIndex{logger: logger.With(zap.String("component", "search"))}
}

// Add appends entries to the index.
func (m *MemoryIndex) Add(entries ...Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
}

// Count returns the number of indexed entries.
func (m *MemoryIndex) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

type scored struct {
	result Result
	score  float64
	order  int
}

// Search ranks entries by token overlap with the query text.
func (m *MemoryIndex) Search(_ context.Context, q Query) ([]Result, error) {
	if q.Top <= 0 {
		q.Top = 5
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	queryTokens := tokenize(q.Text)
	candidates := make([]scored, 0, len(m.entries))
	for i, entry := range m.entries {
		if q.TaxonomyFilter != "" && entry.Taxonomy != q.TaxonomyFilter {
			continue
		}
		score := overlap(queryTokens, tokenize(entry.LabelDefinition))
		if score == 0 {
			continue
		}
		candidates = append(candidates, scored{result: entry, score: score, order: i})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	if len(candidates) > q.Top {
		candidates = candidates[:q.Top]
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		r := c.result
		r.Score = c.score
		results = append(results, r)
	}
	return results, nil
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r >= 0x80)
	}) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			common++
		}
	}
	return float64(common) / float64(len(a))
}
