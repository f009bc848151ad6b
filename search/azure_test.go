package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxotools/semalign/types"
)

func TestAzureIndex_Search(t *testing.T) {
	var gotReq azureSearchRequest
	var gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(azureSearchResponse{Value: []map[string]any{
			{
				"uri":                "http://example.org/airport",
				"Libelle_Definition": "Airport (ou Aerodrome): A place where planes land",
				"Taxonomie":          "transport",
				"@search.score":      2.7,
			},
			{
				"uri":                "http://example.org/harbor",
				"Libelle_Definition": "Harbor: A place where ships dock",
				"Taxonomie":          "transport",
				"@search.score":      1.1,
			},
		}})
	}))
	defer srv.Close()

	idx := NewAzureIndex(AzureConfig{
		Endpoint:       srv.URL,
		IndexName:      "concepts",
		APIKey:         "secret",
		SemanticConfig: "semantic-config",
	}, zap.NewNop())

	results, err := idx.Search(context.Background(), Query{
		Text:           "Airport A place where planes land",
		TaxonomyFilter: "transport",
		Top:            5,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "http://example.org/airport", results[0].URI)
	assert.Equal(t, "Airport (ou Aerodrome): A place where planes land", results[0].LabelDefinition)
	assert.Equal(t, 2.7, results[0].Score)

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "Taxonomie eq 'transport'", gotReq.Filter)
	assert.Equal(t, "semantic", gotReq.QueryType)
	assert.Equal(t, 5, gotReq.Top)
	require.Len(t, gotReq.VectorQueries, 1)
	assert.Equal(t, "Libelle_Definition_vector", gotReq.VectorQueries[0].Fields)
}

func TestAzureIndex_Search_NoFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req azureSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Empty(t, req.Filter)
		_ = json.NewEncoder(w).Encode(azureSearchResponse{})
	}))
	defer srv.Close()

	idx := NewAzureIndex(AzureConfig{Endpoint: srv.URL, IndexName: "concepts"}, zap.NewNop())
	results, err := idx.Search(context.Background(), Query{Text: "anything"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAzureIndex_Search_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	idx := NewAzureIndex(AzureConfig{Endpoint: srv.URL, IndexName: "concepts"}, zap.NewNop())
	_, err := idx.Search(context.Background(), Query{Text: "anything"})
	require.Error(t, err)
	assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestEscapeODataString(t *testing.T) {
	assert.Equal(t, "it''s", escapeODataString("it's"))
	assert.Equal(t, "plain", escapeODataString("plain"))
}
