package skos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFlatten_FullConcept(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	doc, err := Flatten(s, "ex:airport")
	require.NoError(t, err)

	assert.Equal(t, "ex:airport", doc.Subject)
	assert.Equal(t, "Airport/Aéroport", doc.PrefLabel)
	assert.Contains(t, doc.Definition, "(ou Aerodrome)")
	assert.Contains(t, doc.Definition, " : A place where planes land.")
	assert.Contains(t, doc.Definition, "Concepts liés à Airport/Aéroport: Harbor.")
	assert.Contains(t, doc.Definition, "est un concept plus étroit ou une sous-classe de: Transport.")

	combined := doc.CombinedText()
	assert.True(t, len(combined) > len(doc.PrefLabel))
}

func TestFlatten_MinimalConcept(t *testing.T) {
	t.Parallel()

	s := NewStore(zap.NewNop())
	require.NoError(t, s.AddConcept(Concept{
		URI:        "ex:thing",
		PrefLabels: LabelSet{"default": {"Thing"}},
	}))

	doc, err := Flatten(s, "ex:thing")
	require.NoError(t, err)
	assert.Equal(t, "Thing", doc.PrefLabel)
	assert.Empty(t, doc.Definition)
	assert.Equal(t, "Thing", doc.CombinedText())
}

func TestFlattenAll_Order(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	docs := FlattenAll(s)
	require.Len(t, docs, 3)
	assert.Equal(t, "ex:airport", docs[0].Subject)
	assert.Equal(t, "ex:harbor", docs[1].Subject)
	assert.Equal(t, "ex:transport", docs[2].Subject)
}
