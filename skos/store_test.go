package skos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxotools/semalign/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(zap.NewNop())
	require.NoError(t, s.AddConcept(Concept{
		URI:         "ex:transport",
		PrefLabels:  LabelSet{"en": {"Transport"}},
		Definitions: LabelSet{"en": {"Moving people or goods"}},
	}))
	require.NoError(t, s.AddConcept(Concept{
		URI:         "ex:airport",
		PrefLabels:  LabelSet{"en": {"Airport"}, "fr": {"Aéroport"}},
		AltLabels:   LabelSet{"en": {"Aerodrome"}},
		Definitions: LabelSet{"en": {"A place where planes land"}},
		Broader:     []string{"ex:transport"},
		Related:     []string{"ex:harbor"},
	}))
	require.NoError(t, s.AddConcept(Concept{
		URI:        "ex:harbor",
		PrefLabels: LabelSet{"en": {"Harbor"}},
		Broader:    []string{"ex:transport"},
	}))
	return s
}

func TestStore_GetAndTraversal(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	c, err := s.Get("ex:airport")
	require.NoError(t, err)
	assert.Equal(t, "Airport", c.PrefLabel())
	assert.Equal(t, "A place where planes land", c.Definition())

	broader, err := s.Broader("ex:airport")
	require.NoError(t, err)
	require.Len(t, broader, 1)
	assert.Equal(t, "ex:transport", broader[0].URI)

	// AddConcept maintains the narrower edge on the parent
	narrower, err := s.Narrower("ex:transport")
	require.NoError(t, err)
	assert.Len(t, narrower, 2)

	related, err := s.Related("ex:airport")
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "ex:harbor", related[0].URI)
}

func TestStore_Get_NotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, err := s.Get("ex:missing")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}

func TestStore_RemoveConcept_StripsReferences(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.RemoveConcept("ex:harbor"))

	_, err := s.Get("ex:harbor")
	require.Error(t, err)

	airport, err := s.Get("ex:airport")
	require.NoError(t, err)
	assert.Empty(t, airport.Related)

	transport, err := s.Get("ex:transport")
	require.NoError(t, err)
	assert.Equal(t, []string{"ex:airport"}, transport.Narrower)
}

func TestStore_RemoveConcept_NotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	err := s.RemoveConcept("ex:missing")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}

func TestStore_FindByLabel(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	byPref := s.FindByLabel("Aéroport")
	require.Len(t, byPref, 1)
	assert.Equal(t, "ex:airport", byPref[0].URI)

	byAlt := s.FindByLabel("Aerodrome")
	require.Len(t, byAlt, 1)
	assert.Equal(t, "ex:airport", byAlt[0].URI)

	assert.Empty(t, s.FindByLabel("Nothing"))
}

func TestStore_ReadsAreCopies(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	c, err := s.Get("ex:airport")
	require.NoError(t, err)
	c.PrefLabels["en"][0] = "mutated"

	again, err := s.Get("ex:airport")
	require.NoError(t, err)
	assert.Equal(t, "Airport", again.PrefLabel())
}
