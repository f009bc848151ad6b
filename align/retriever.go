package align

import (
	"context"

	"go.uber.org/zap"

	"github.com/taxotools/semalign/search"
)

// DefaultTopK is the maximum number of candidates retrieved per concept.
const DefaultTopK = 5

// SourceConcept identifies the user-supplied concept being aligned.
type SourceConcept struct {
	URI        string `json:"uri"`
	Label      string `json:"label"`
	Definition string `json:"definition"`
}

// Candidate pairs a source concept with one retrieved index entry.
type Candidate struct {
	SourceURI        string `json:"source_uri"`
	SourceLabel      string `json:"source_label"`
	SourceDefinition string `json:"source_definition"`

	URI        string `json:"candidate_uri"`
	Label      string `json:"candidate_label"`
	Definition string `json:"candidate_definition"`

	// LabelDefinition keeps the raw combined field for the
	// classification prompt.
	LabelDefinition string `json:"label_definition"`
}

// CandidateCache stores retrieval results keyed by query; a miss returns
// ok=false. Implementations must be safe for concurrent use.
type CandidateCache interface {
	Get(ctx context.Context, key string) ([]search.Result, bool)
	Set(ctx context.Context, key string, results []search.Result)
}

// Retriever queries the search index for concepts similar to a source
// label/definition.
type Retriever struct {
	index  search.Index
	cache  CandidateCache
	topK   int
	logger *zap.Logger
}

// RetrieverOption customizes a Retriever.
type RetrieverOption func(*Retriever)

// WithTopK overrides the candidate cap (default 5).
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithCache adds a retrieval cache.
func WithCache(c CandidateCache) RetrieverOption {
	return func(r *Retriever) { r.cache = c }
}

// NewRetriever creates a candidate retriever over the given index.
func NewRetriever(index search.Index, logger *zap.Logger, opts ...RetrieverOption) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Retriever{
		index:  index,
		topK:   DefaultTopK,
		logger: logger.With(zap.String("component", "retriever")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns up to K candidates for the source concept, best
// first. Zero results means no alignment is possible for this concept
// and is not an error. An empty definition yields a label-only query.
func (r *Retriever) Retrieve(ctx context.Context, src SourceConcept, taxonomyFilter string) ([]Candidate, error) {
	query := src.Label + src.Definition
	if src.Definition == "" {
		query = src.Label + " "
	}

	cacheKey := query + "|" + taxonomyFilter
	results, ok := r.cached(ctx, cacheKey)
	if !ok {
		var err error
		results, err = r.index.Search(ctx, search.Query{
			Text:           query,
			TaxonomyFilter: taxonomyFilter,
			Top:            r.topK,
		})
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			r.cache.Set(ctx, cacheKey, results)
		}
	}

	candidates := make([]Candidate, 0, len(results))
	for _, res := range results {
		label, definition := SplitLabelDefinition(res.LabelDefinition)
		candidates = append(candidates, Candidate{
			SourceURI:        src.URI,
			SourceLabel:      src.Label,
			SourceDefinition: src.Definition,
			URI:              res.URI,
			Label:            label,
			Definition:       definition,
			LabelDefinition:  res.LabelDefinition,
		})
	}

	r.logger.Debug("candidates retrieved",
		zap.String("source", src.Label),
		zap.Int("count", len(candidates)))
	return candidates, nil
}

func (r *Retriever) cached(ctx context.Context, key string) ([]search.Result, bool) {
	if r.cache == nil {
		return nil, false
	}
	return r.cache.Get(ctx, key)
}
