package skos

import (
	"fmt"
	"strings"
)

// Document is the flattened form of a concept, as stored in the
// reference index. Definition carries the combined alt-label,
// definition, and relation sentences appended to the label.
type Document struct {
	Subject    string `json:"subject"`
	PrefLabel  string `json:"prefLabel"`
	Definition string `json:"definition"`
}

// CombinedText returns the full index text, the informal grammar
// "<label>[ (ou <altlabels>)][ : <definition>.]" followed by relation
// sentences.
func (d Document) CombinedText() string {
	return d.PrefLabel + d.Definition
}

// Flatten builds the index document of one concept, resolving related,
// broader, and narrower neighbor labels through the store.
func Flatten(store *Store, uri string) (Document, error) {
	c, err := store.Get(uri)
	if err != nil {
		return Document{}, err
	}

	label := strings.Join(c.PrefLabels.Join(), "/")

	var alt string
	if alts := c.AltLabels.Join(); len(alts) > 0 {
		alt = fmt.Sprintf(" (ou %s)", strings.Join(alts, ", "))
	}

	var def string
	if defs := c.Definitions.Join(); len(defs) > 0 {
		def = fmt.Sprintf(" : %s.", strings.Join(defs, ""))
	}

	related := relationSentence(store, c.Related, "\nConcepts liés à %s: %s.", label)
	narrower := relationSentence(store, c.Narrower, "\n%s est un concept plus large que: %s.", label)
	broader := relationSentence(store, c.Broader, "\n%s est un concept plus étroit ou une sous-classe de: %s.", label)

	return Document{
		Subject:    c.URI,
		PrefLabel:  label,
		Definition: alt + def + related + narrower + broader,
	}, nil
}

func relationSentence(store *Store, refs []string, format, label string) string {
	var labels []string
	for _, ref := range refs {
		n, err := store.Get(ref)
		if err != nil {
			continue
		}
		labels = append(labels, n.PrefLabels.Join()...)
	}
	if len(labels) == 0 {
		return ""
	}
	return fmt.Sprintf(format, label, strings.Join(labels, "; "))
}

// FlattenAll builds index documents for every concept in the store, in
// URI order.
func FlattenAll(store *Store) []Document {
	var docs []Document
	for _, uri := range store.URIs() {
		doc, err := Flatten(store, uri)
		if err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}
