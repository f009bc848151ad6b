// Package search defines the Search Index Service contract used by the
// candidate retriever and the index-search worker, together with an
// Azure AI Search client and an in-memory index for tests.
package search

import "context"

// Query describes one retrieval against the reference concept index.
type Query struct {
	// Text is the lexical query; it also feeds the vectorizable text
	// query on services that support hybrid retrieval.
	Text string `json:"text"`

	// TaxonomyFilter restricts results to one taxonomy when non-empty
	// (equality filter on the index's taxonomy attribute).
	TaxonomyFilter string `json:"taxonomy_filter,omitempty"`

	// Top caps the number of returned results (rank 0 = best match).
	Top int `json:"top"`
}

// Result is one ranked record of the reference concept index.
type Result struct {
	// URI identifies the indexed concept.
	URI string `json:"uri"`

	// LabelDefinition is the combined text field of the informal grammar
	// "<label>[ (ou <altlabels>)][: <definition>]".
	LabelDefinition string `json:"label_definition"`

	// Taxonomy is the taxonomy attribute the filter applies to.
	Taxonomy string `json:"taxonomy,omitempty"`

	// Score is the service's relevance score, best-first.
	Score float64 `json:"score,omitempty"`
}

// Index is the retrieval contract. Implementations must return at most
// Top results in stable best-first order; zero results is not an error.
type Index interface {
	Search(ctx context.Context, q Query) ([]Result, error)
}
