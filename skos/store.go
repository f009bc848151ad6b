package skos

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/taxotools/semalign/types"
)

// Store is an in-memory concept store. It is safe for concurrent use;
// reads return copies so callers never observe partial edits.
type Store struct {
	mu       sync.RWMutex
	concepts map[string]Concept
	logger   *zap.Logger
}

// NewStore creates an empty concept store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		concepts: make(map[string]Concept),
		logger:   logger.With(zap.String("component", "concept-store")),
	}
}

// Get returns the concept with the given URI.
func (s *Store) Get(uri string) (Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.concepts[uri]
	if !ok {
		return Concept{}, types.NewErrorf(types.ErrNotFound, "concept not found: %s", uri)
	}
	return c.clone(), nil
}

// URIs returns all concept URIs in lexical order.
func (s *Store) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]string, 0, len(s.concepts))
	for uri := range s.concepts {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// Count returns the number of stored concepts.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.concepts)
}

// AddConcept inserts or replaces a concept and links it under its broader
// concepts (the narrower edge is maintained on both sides).
func (s *Store) AddConcept(c Concept) error {
	if c.URI == "" {
		return types.NewError(types.ErrInvalidRequest, "concept URI is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.concepts[c.URI] = c.clone()
	for _, parent := range c.Broader {
		p, ok := s.concepts[parent]
		if !ok {
			continue
		}
		if !contains(p.Narrower, c.URI) {
			p.Narrower = append(p.Narrower, c.URI)
			s.concepts[parent] = p
		}
	}

	s.logger.Info("concept added", zap.String("uri", c.URI))
	return nil
}

// RemoveConcept deletes a concept and strips every reference to it from
// the remaining concepts, mirroring triple removal in both directions.
func (s *Store) RemoveConcept(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.concepts[uri]; !ok {
		return types.NewErrorf(types.ErrNotFound, "concept not found: %s", uri)
	}
	delete(s.concepts, uri)

	for key, c := range s.concepts {
		changed := false
		if contains(c.Broader, uri) {
			c.Broader = remove(c.Broader, uri)
			changed = true
		}
		if contains(c.Narrower, uri) {
			c.Narrower = remove(c.Narrower, uri)
			changed = true
		}
		if contains(c.Related, uri) {
			c.Related = remove(c.Related, uri)
			changed = true
		}
		if changed {
			s.concepts[key] = c
		}
	}

	s.logger.Info("concept removed", zap.String("uri", uri))
	return nil
}

// Broader returns the broader concepts of the given URI, skipping
// references that resolve to nothing.
func (s *Store) Broader(uri string) ([]Concept, error) {
	return s.neighbors(uri, func(c Concept) []string { return c.Broader })
}

// Narrower returns the narrower concepts of the given URI.
func (s *Store) Narrower(uri string) ([]Concept, error) {
	return s.neighbors(uri, func(c Concept) []string { return c.Narrower })
}

// Related returns the related concepts of the given URI.
func (s *Store) Related(uri string) ([]Concept, error) {
	return s.neighbors(uri, func(c Concept) []string { return c.Related })
}

func (s *Store) neighbors(uri string, edges func(Concept) []string) ([]Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.concepts[uri]
	if !ok {
		return nil, types.NewErrorf(types.ErrNotFound, "concept not found: %s", uri)
	}

	var out []Concept
	for _, ref := range edges(c) {
		if n, ok := s.concepts[ref]; ok {
			out = append(out, n.clone())
		}
	}
	return out, nil
}

// FindByLabel returns concepts whose preferred or alternative label
// equals the given label in any language.
func (s *Store) FindByLabel(label string) []Concept {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Concept
	for _, c := range s.concepts {
		if hasLabel(c.PrefLabels, label) || hasLabel(c.AltLabels, label) {
			out = append(out, c.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

func hasLabel(ls LabelSet, label string) bool {
	for _, vals := range ls {
		for _, v := range vals {
			if v == label {
				return true
			}
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
