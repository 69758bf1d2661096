package retriever

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govrag/model"
	"govrag/store"
	"govrag/types"
)

type stubEmbedder struct {
	calls []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls = append(s.calls, text)
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		v, _ := s.Embed(context.Background(), t)
		vecs[i] = v
	}
	return vecs, nil
}

func (s *stubEmbedder) Dimension() int { return 2 }

// scriptedStore returns a canned hit list per Search call, in order.
type scriptedStore struct {
	*store.MemoryStore
	responses [][]types.SearchHit
	searches  []*store.Filter
}

func (s *scriptedStore) Search(_ context.Context, _ []float32, filter *store.Filter, _ int) ([]types.SearchHit, error) {
	s.searches = append(s.searches, filter)
	if len(s.responses) == 0 {
		return nil, nil
	}
	hits := s.responses[0]
	s.responses = s.responses[1:]
	return hits, nil
}

type stubRerankProvider struct {
	results []model.RerankResult
	err     error
}

func (s *stubRerankProvider) Rerank(_ context.Context, _ string, _ []string, _ int) ([]model.RerankResult, error) {
	return s.results, s.err
}

func makeHits(n int) []types.SearchHit {
	hits := make([]types.SearchHit, n)
	for i := range hits {
		hits[i] = types.SearchHit{
			ID:    uuid.New(),
			Score: 1 - float64(i)*0.1,
			Metadata: types.Metadata{
				DocumentName: "doc",
				Text:         fmt.Sprintf("passage %d", i),
			},
		}
	}
	return hits
}

func TestQueryTruncatesWithoutReranker(t *testing.T) {
	storer := &scriptedStore{responses: [][]types.SearchHit{makeHits(10)}}
	r := New(&stubEmbedder{}, storer, nil, nil)

	hits, err := r.Query(context.Background(), "what is the policy?", Options{TopK: 3, InitialK: 10})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "passage 0", hits[0].Metadata.Text)

	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestQueryRerankReorders(t *testing.T) {
	storer := &scriptedStore{responses: [][]types.SearchHit{makeHits(5)}}
	provider := &stubRerankProvider{results: []model.RerankResult{
		{Index: 4, Score: 0.99},
		{Index: 0, Score: 0.42},
	}}
	r := New(&stubEmbedder{}, storer, NewReranker(provider, nil), nil)

	hits, err := r.Query(context.Background(), "question", Options{TopK: 2, InitialK: 5})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "passage 4", hits[0].Metadata.Text)
	assert.Equal(t, 0.99, hits[0].Score)
	assert.Equal(t, "passage 0", hits[1].Metadata.Text)
}

func TestQueryRerankProviderFailureKeepsOrder(t *testing.T) {
	original := makeHits(5)
	storer := &scriptedStore{responses: [][]types.SearchHit{original}}
	provider := &stubRerankProvider{err: errors.New("quota exceeded")}
	r := New(&stubEmbedder{}, storer, NewReranker(provider, nil), nil)

	hits, err := r.Query(context.Background(), "question", Options{TopK: 3, InitialK: 5})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for i := range hits {
		assert.Equal(t, original[i].ID, hits[i].ID)
		assert.Equal(t, original[i].Score, hits[i].Score)
	}
}

func TestQueryFallbackDropsFilterThenSimplifies(t *testing.T) {
	storer := &scriptedStore{responses: [][]types.SearchHit{
		nil, // filtered search, empty
		nil, // unfiltered search, empty
		makeHits(2),
	}}
	embedder := &stubEmbedder{}
	r := New(embedder, storer, nil, nil)

	filter := &store.Filter{DocumentName: "besluit"}
	hits, err := r.Query(context.Background(), "what does the decision say about permits?", Options{TopK: 5, Filter: filter})
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	require.Len(t, storer.searches, 3)
	assert.Equal(t, filter, storer.searches[0])
	assert.Nil(t, storer.searches[1])
	assert.Nil(t, storer.searches[2])

	// second embed call used the simplified prompt
	require.Len(t, embedder.calls, 2)
	assert.Equal(t, "what does decision about permits", embedder.calls[1])
}

func TestQueryEmptyResultIsNotAnError(t *testing.T) {
	storer := &scriptedStore{}
	r := New(&stubEmbedder{}, storer, nil, nil)

	hits, err := r.Query(context.Background(), "????", Options{TopK: 5})
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestSimplifyQuery(t *testing.T) {
	assert.Equal(t, "what does decision about permits",
		SimplifyQuery("what does the decision say about permits?"))
	assert.Equal(t, "", SimplifyQuery("is it ok?"))
}

func TestRerankerTopNLargerThanCandidates(t *testing.T) {
	rr := NewReranker(nil, nil)
	hits := makeHits(2)
	got := rr.Rerank(context.Background(), "q", hits, 10)
	assert.Len(t, got, 2)
}
