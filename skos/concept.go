// Package skos provides the concept-store contract: SKOS-style taxonomy
// concepts keyed by URI with broader/narrower/related traversal, an
// in-memory store supporting taxonomy edits, and the label+definition
// document flattening consumed by the reference index.
package skos

// LabelSet maps a language tag ("en", "fr", or "default" for untagged
// literals) to the literals carried in that language.
type LabelSet map[string][]string

// Clone returns a deep copy of the label set.
func (ls LabelSet) Clone() LabelSet {
	if ls == nil {
		return nil
	}
	out := make(LabelSet, len(ls))
	for lang, vals := range ls {
		out[lang] = append([]string(nil), vals...)
	}
	return out
}

// Languages joined when flattening a label set, in priority order.
var preferredLanguages = []string{"en", "fr", "default"}

// Join returns all literals for the preferred languages, in order.
func (ls LabelSet) Join() []string {
	var out []string
	for _, lang := range preferredLanguages {
		out = append(out, ls[lang]...)
	}
	return out
}

// Concept is one taxonomy concept. Concepts read from the store are
// copies; mutations go through the store's AddConcept/RemoveConcept.
type Concept struct {
	URI         string   `json:"uri"`
	PrefLabels  LabelSet `json:"pref_labels,omitempty"`
	AltLabels   LabelSet `json:"alt_labels,omitempty"`
	Definitions LabelSet `json:"definitions,omitempty"`
	Broader     []string `json:"broader,omitempty"`
	Narrower    []string `json:"narrower,omitempty"`
	Related     []string `json:"related,omitempty"`
}

// PrefLabel returns the first preferred label in language priority order.
func (c Concept) PrefLabel() string {
	labels := c.PrefLabels.Join()
	if len(labels) == 0 {
		return ""
	}
	return labels[0]
}

// Definition returns the first definition in language priority order.
func (c Concept) Definition() string {
	defs := c.Definitions.Join()
	if len(defs) == 0 {
		return ""
	}
	return defs[0]
}

func (c Concept) clone() Concept {
	return Concept{
		URI:         c.URI,
		PrefLabels:  c.PrefLabels.Clone(),
		AltLabels:   c.AltLabels.Clone(),
		Definitions: c.Definitions.Clone(),
		Broader:     append([]string(nil), c.Broader...),
		Narrower:    append([]string(nil), c.Narrower...),
		Related:     append([]string(nil), c.Related...),
	}
}
