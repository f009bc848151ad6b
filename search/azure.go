package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taxotools/semalign/types"
)

// AzureConfig configures the Azure AI Search Index implementation.
//
// Field names default to the reference index schema: a combined
// "Libelle_Definition" text field, its vector companion, and a
// "Taxonomie" filter attribute.
type AzureConfig struct {
	Endpoint   string        `json:"endpoint" yaml:"endpoint"`
	IndexName  string        `json:"index_name" yaml:"index_name"`
	APIKey     string        `json:"api_key" yaml:"api_key"`
	APIVersion string        `json:"api_version,omitempty" yaml:"api_version,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	URIField       string `json:"uri_field,omitempty" yaml:"uri_field,omitempty"`
	TextField      string `json:"text_field,omitempty" yaml:"text_field,omitempty"`
	VectorField    string `json:"vector_field,omitempty" yaml:"vector_field,omitempty"`
	TaxonomyField  string `json:"taxonomy_field,omitempty" yaml:"taxonomy_field,omitempty"`
	SemanticConfig string `json:"semantic_config,omitempty" yaml:"semantic_config,omitempty"`
}

// AzureIndex implements Index using the Azure AI Search REST API with
// hybrid lexical+vector+semantic reranking retrieval.
type AzureIndex struct {
	cfg     AzureConfig
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewAzureIndex creates an Azure AI Search backed Index.
func NewAzureIndex(cfg AzureConfig, logger *zap.Logger) *AzureIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-07-01"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.URIField == "" {
		cfg.URIField = "uri"
	}
	if cfg.TextField == "" {
		cfg.TextField = "Libelle_Definition"
	}
	if cfg.VectorField == "" {
		cfg.VectorField = "Libelle_Definition_vector"
	}
	if cfg.TaxonomyField == "" {
		cfg.TaxonomyField = "Taxonomie"
	}

	return &AzureIndex{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.Endpoint, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.With(zap.String("component", "search"), zap.String("index", cfg.IndexName)),
	}
}

type azureVectorQuery struct {
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	Fields     string `json:"fields"`
	K          int    `json:"k"`
	Exhaustive bool   `json:"exhaustive"`
}

type azureSearchRequest struct {
	Search                string             `json:"search"`
	VectorQueries         []azureVectorQuery `json:"vectorQueries,omitempty"`
	Filter                string             `json:"filter,omitempty"`
	Select                string             `json:"select,omitempty"`
	Top                   int                `json:"top"`
	QueryType             string             `json:"queryType,omitempty"`
	SemanticConfiguration string             `json:"semanticConfiguration,omitempty"`
}

type azureSearchResponse struct {
	Value []map[string]any `json:"value"`
}

// Search issues one hybrid retrieval. The taxonomy filter becomes an
// OData equality expression on the configured taxonomy attribute.
func (a *AzureIndex) Search(ctx context.Context, q Query) ([]Result, error) {
	if q.Top <= 0 {
		q.Top = 5
	}

	body := azureSearchRequest{
		Search: q.Text,
		VectorQueries: []azureVectorQuery{{
			Kind:       "text",
			Text:       q.Text,
			Fields:     a.cfg.VectorField,
			K:          q.Top,
			Exhaustive: true,
		}},
		Select: strings.Join([]string{a.cfg.URIField, a.cfg.TextField, a.cfg.TaxonomyField}, ","),
		Top:    q.Top,
	}
	if a.cfg.SemanticConfig != "" {
		body.QueryType = "semantic"
		body.SemanticConfiguration = a.cfg.SemanticConfig
	}
	if q.TaxonomyFilter != "" {
		body.Filter = fmt.Sprintf("%s eq '%s'", a.cfg.TaxonomyField, escapeODataString(q.TaxonomyFilter))
	}

	endpoint := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s",
		a.baseURL, url.PathEscape(a.cfg.IndexName), a.cfg.APIVersion)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "marshal search request").
			WithService("search-index").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "build search request").
			WithService("search-index").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrServiceUnavailable, "search index unreachable").
			WithService("search-index").WithRetryable(true).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		a.logger.Warn("search request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw))
		code := types.ErrUpstreamError
		retryable := true
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			code = types.ErrAuthentication
			retryable = false
		}
		return nil, types.NewErrorf(code, "search index returned status %d", resp.StatusCode).
			WithService("search-index").WithRetryable(retryable)
	}

	var out azureSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "decode search response").
			WithService("search-index").WithRetryable(true).WithCause(err)
	}

	results := make([]Result, 0, len(out.Value))
	for _, record := range out.Value {
		results = append(results, Result{
			URI:             stringField(record, a.cfg.URIField),
			LabelDefinition: stringField(record, a.cfg.TextField),
			Taxonomy:        stringField(record, a.cfg.TaxonomyField),
			Score:           floatField(record, "@search.score"),
		})
	}

	a.logger.Debug("search completed",
		zap.String("query", q.Text),
		zap.String("filter", q.TaxonomyFilter),
		zap.Int("results", len(results)))
	return results, nil
}

func stringField(record map[string]any, field string) string {
	if v, ok := record[field].(string); ok {
		return v
	}
	return ""
}

func floatField(record map[string]any, field string) float64 {
	if v, ok := record[field].(float64); ok {
		return v
	}
	return 0
}

// escapeODataString doubles single quotes per OData string literal rules.
func escapeODataString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
