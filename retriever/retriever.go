// Package retriever implements two-stage retrieval: a wide vector search
// followed by reranking down to the requested result count.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"govrag/model"
	"govrag/store"
	"govrag/types"
)

const (
	DefaultTopK     = 5
	DefaultInitialK = 25
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Options tune a single query. Zero values fall back to the defaults above;
// Rerank defaults to on.
type Options struct {
	TopK     int
	InitialK int
	Filter   *store.Filter
	Rerank   *bool
}

func (o Options) topK() int {
	if o.TopK > 0 {
		return o.TopK
	}
	return DefaultTopK
}

func (o Options) initialK() int {
	k := o.InitialK
	if k <= 0 {
		k = DefaultInitialK
	}
	if topK := o.topK(); k < topK {
		k = topK
	}
	return k
}

func (o Options) rerank() bool {
	return o.Rerank == nil || *o.Rerank
}

type Retriever struct {
	embedder model.Embedder
	store    store.VectorStorer
	reranker *Reranker
	logger   *slog.Logger
}

func New(embedder model.Embedder, storer store.VectorStorer, reranker *Reranker, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		embedder: embedder,
		store:    storer,
		reranker: reranker,
		logger:   logger,
	}
}

// Query embeds the prompt once, searches the store for InitialK candidates
// and narrows them to TopK. When the first search comes back empty it walks
// a fallback ladder: drop the filter, then retry with a simplified prompt.
// Hits are returned in descending score order; no matches yields an empty
// slice, not an error.
func (r *Retriever) Query(ctx context.Context, prompt string, opts Options) ([]types.SearchHit, error) {
	vector, err := r.embedder.Embed(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	initialK := opts.initialK()
	hits, err := r.store.Search(ctx, vector, opts.Filter, initialK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	if len(hits) == 0 && opts.Filter != nil && !opts.Filter.IsZero() {
		r.logger.Info("no hits with filter, retrying unfiltered", "filter", *opts.Filter)
		hits, err = r.store.Search(ctx, vector, nil, initialK)
		if err != nil {
			return nil, fmt.Errorf("unfiltered search: %w", err)
		}
	}

	if len(hits) == 0 {
		if simplified := SimplifyQuery(prompt); simplified != "" && simplified != prompt {
			r.logger.Info("no hits, retrying with simplified query", "query", simplified)
			vec, err := r.embedder.Embed(ctx, simplified)
			if err != nil {
				return nil, fmt.Errorf("embed simplified query: %w", err)
			}
			hits, err = r.store.Search(ctx, vec, nil, initialK)
			if err != nil {
				return nil, fmt.Errorf("simplified search: %w", err)
			}
		}
	}

	if len(hits) == 0 {
		return []types.SearchHit{}, nil
	}

	topK := opts.topK()
	if opts.rerank() && r.reranker != nil && len(hits) > topK {
		return r.reranker.Rerank(ctx, prompt, hits, topK), nil
	}
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// SimplifyQuery keeps only the content-bearing words of a prompt, dropping
// punctuation and words of three characters or fewer. Returns "" when
// nothing survives.
func SimplifyQuery(prompt string) string {
	words := wordPattern.FindAllString(prompt, -1)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) > 3 {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
