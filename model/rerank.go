package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RerankResult scores one input text; Index refers into the texts slice the
// provider was called with.
type RerankResult struct {
	Index int
	Score float64
}

// RerankProvider is the raw cross-encoding provider contract. It fails with
// an error; graceful degradation is the caller's job.
type RerankProvider interface {
	Rerank(ctx context.Context, query string, texts []string, topN int) ([]RerankResult, error)
}

// RerankerConfig configures the rerank client.
type RerankerConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// CohereReranker calls a Cohere-style /v1/rerank endpoint with the full
// candidate batch in a single request.
type CohereReranker struct {
	cfg    RerankerConfig
	client *http.Client
}

func NewCohereReranker(cfg RerankerConfig) *CohereReranker {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "rerank-multilingual-v3.0"
	}
	return &CohereReranker{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

func (r *CohereReranker) Rerank(ctx context.Context, query string, texts []string, topN int) ([]RerankResult, error) {
	body, err := json.Marshal(rerankRequest{
		Model:     r.cfg.Model,
		Query:     query,
		Documents: texts,
		TopN:      topN,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/v1/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rerank provider: status %d, body: %s", resp.StatusCode, string(msg))
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("rerank provider: failed to decode response: %w", err)
	}

	results := make([]RerankResult, 0, len(parsed.Results))
	for _, res := range parsed.Results {
		if res.Index < 0 || res.Index >= len(texts) {
			return nil, fmt.Errorf("rerank provider: index %d out of range for %d documents", res.Index, len(texts))
		}
		results = append(results, RerankResult{Index: res.Index, Score: res.RelevanceScore})
	}
	return results, nil
}
