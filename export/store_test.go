package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxotools/semalign/align"
	"github.com/taxotools/semalign/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", zap.NewNop())
	require.NoError(t, err)
	return s
}

func sampleResults() []align.ConceptResult {
	return []align.ConceptResult{
		{
			Source: align.SourceConcept{URI: "ex:airport", Label: "Airport", Definition: "A place where planes land"},
			Records: []align.Record{
				{
					CellID:     "cell/1",
					Relation:   align.RelationExactMatch,
					Confidence: 0.95,
					SourceURI:  "ex:airport", SourceLabel: "Airport", SourceDefinition: "A place where planes land",
					CandidateURI: "ref:aerodrome", CandidateLabel: "Aerodrome", CandidateDefinition: "A landing field",
				},
			},
		},
		{
			Source: align.SourceConcept{URI: "ex:broken", Label: "Broken"},
			Err:    types.NewError(types.ErrClassificationProtocol, "wrong verdict count"),
		},
		{
			Source: align.SourceConcept{URI: "ex:harbor", Label: "Harbor"},
			Records: []align.Record{
				{CellID: "cell/2", Relation: align.RelationCloseMatch, Confidence: 0.7,
					SourceURI: "ex:harbor", CandidateURI: "ref:port"},
				{CellID: "cell/3", Relation: align.RelationCloseMatch, Confidence: 0.6,
					SourceURI: "ex:harbor", CandidateURI: "ref:dock"},
			},
		},
	}
}

func TestStore_SaveRunAndReadBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.SaveRun(ctx, "transport", sampleResults())
	require.NoError(t, err)
	assert.Equal(t, 3, run.Concepts)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, "transport", run.TaxonomyFilter)

	rows, err := s.Records(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// allocation order is preserved
	assert.Equal(t, "cell/1", rows[0].CellID)
	assert.Equal(t, "cell/2", rows[1].CellID)
	assert.Equal(t, "cell/3", rows[2].CellID)

	assert.Equal(t, string(align.RelationExactMatch), rows[0].Relation)
	assert.Equal(t, 0.95, rows[0].Confidence)
	assert.Equal(t, "ref:aerodrome", rows[0].CandidateURI)
	assert.Equal(t, "A landing field", rows[0].CandidateDefinition)
}

func TestStore_EmptyRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.SaveRun(ctx, "", nil)
	require.NoError(t, err)

	rows, err := s.Records(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_GetRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.SaveRun(ctx, "", sampleResults())
	require.NoError(t, err)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)

	_, err = s.GetRun(ctx, "no-such-run")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}

func TestStore_RunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.SaveRun(ctx, "a", nil)
	require.NoError(t, err)
	second, err := s.SaveRun(ctx, "b", nil)
	require.NoError(t, err)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}
