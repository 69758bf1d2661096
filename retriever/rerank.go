package retriever

import (
	"context"
	"log/slog"

	"govrag/model"
	"govrag/types"
)

// Reranker reorders search hits with an external relevance model. Provider
// failures degrade to the original vector-search order instead of failing
// the query.
type Reranker struct {
	provider model.RerankProvider
	logger   *slog.Logger
}

func NewReranker(provider model.RerankProvider, logger *slog.Logger) *Reranker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reranker{provider: provider, logger: logger}
}

// Rerank returns at most topN hits. When the provider succeeds the hits are
// reordered by its relevance scores (which replace the vector scores); when
// it fails the first topN hits are returned unchanged.
func (r *Reranker) Rerank(ctx context.Context, query string, hits []types.SearchHit, topN int) []types.SearchHit {
	if topN <= 0 || len(hits) == 0 {
		return nil
	}
	if topN > len(hits) {
		topN = len(hits)
	}
	if r.provider == nil {
		return hits[:topN]
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Metadata.Text
	}

	results, err := r.provider.Rerank(ctx, query, texts, topN)
	if err != nil {
		r.logger.Warn("rerank failed, keeping vector order", "error", err)
		return hits[:topN]
	}

	reranked := make([]types.SearchHit, 0, len(results))
	for _, res := range results {
		hit := hits[res.Index]
		hit.Score = res.Score
		reranked = append(reranked, hit)
	}
	if len(reranked) > topN {
		reranked = reranked[:topN]
	}
	return reranked
}
