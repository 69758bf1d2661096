package citations

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// directionEmbedder maps known texts to fixed directions so cosine scores
// are predictable.
type directionEmbedder struct {
	directions map[string][]float32
}

func (e *directionEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := e.directions[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (e *directionEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i], _ = e.Embed(ctx, t)
	}
	return vecs, nil
}

func (e *directionEmbedder) Dimension() int { return 3 }

func TestProcessCitationsScoresAndSorts(t *testing.T) {
	embedder := &directionEmbedder{directions: map[string][]float32{
		"permit rules":     {1, 0, 0},
		"exactly on topic": {1, 0, 0},  // cos 1 → score 1
		"opposite":         {-1, 0, 0}, // cos -1 → score 0
		"orthogonal":       {0, 1, 0},  // cos 0 → score 0.5
	}}

	content := []ContentItem{
		{Text: "opposite", URL: "https://a.example/1"},
		{Text: "exactly on topic", URL: "https://a.example/2", Title: "Best"},
		{Text: "orthogonal", URL: "https://a.example/3"},
	}

	got, err := NewScorer(embedder).ProcessCitations(context.Background(), "permit rules", content, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Best", got[0].Title)
	assert.InDelta(t, 1.0, got[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.5, got[1].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.0, got[2].RelevanceScore, 1e-9)

	for _, c := range got {
		assert.NotEqual(t, "", c.ID.String())
		assert.Equal(t, "a.example", c.Domain)
	}
}

func TestProcessCitationsDeduplicatesByURL(t *testing.T) {
	embedder := &directionEmbedder{directions: map[string][]float32{
		"query":     {1, 0, 0},
		"good text": {1, 0, 0},
		"weak text": {0, 1, 0},
	}}

	content := []ContentItem{
		{Text: "weak text", URL: "https://Example.org/Doc"},
		{Text: "good text", URL: "https://example.org/doc"},
	}

	got, err := NewScorer(embedder).ProcessCitations(context.Background(), "query", content, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// the higher-scoring duplicate wins
	assert.Equal(t, "good text", got[0].HighlightText)
	assert.InDelta(t, 1.0, got[0].RelevanceScore, 1e-9)
}

func TestProcessCitationsDuplicateInTopKShrinksOutput(t *testing.T) {
	embedder := &directionEmbedder{directions: map[string][]float32{
		"query":      {1, 0, 0},
		"best text":  {1, 0, 0},
		"duplicate":  {1, 0, 0},
		"third best": {0, 1, 0},
	}}

	// the two best items share a URL; the third must not be pulled in
	content := []ContentItem{
		{Text: "best text", URL: "https://e.org/same"},
		{Text: "duplicate", URL: "https://E.org/Same"},
		{Text: "third best", URL: "https://e.org/other"},
	}

	got, err := NewScorer(embedder).ProcessCitations(context.Background(), "query", content, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://e.org/same", got[0].URL)
	assert.InDelta(t, 1.0, got[0].RelevanceScore, 1e-9)
}

func TestProcessCitationsTopK(t *testing.T) {
	embedder := &directionEmbedder{directions: map[string][]float32{}}
	content := []ContentItem{
		{Text: "a", URL: "https://e.org/1"},
		{Text: "b", URL: "https://e.org/2"},
		{Text: "c", URL: "https://e.org/3"},
	}

	got, err := NewScorer(embedder).ProcessCitations(context.Background(), "q", content, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestProcessCitationsEmptyInput(t *testing.T) {
	got, err := NewScorer(&directionEmbedder{}).ProcessCitations(context.Background(), "q", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProcessCitationsCarriesOptionalFields(t *testing.T) {
	embedder := &directionEmbedder{}
	content := []ContentItem{{
		Text:          "some text",
		URL:           "https://www.gov.example/report",
		Title:         "Report",
		Publisher:     "Ministry",
		Format:        "PDF",
		DownloadURL:   "https://gov.example/report.pdf",
		PublishedDate: "2023-05-01",
	}}

	got, err := NewScorer(embedder).ProcessCitations(context.Background(), "q", content, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	c := got[0]
	assert.Equal(t, "Ministry", c.Publisher)
	assert.Equal(t, "PDF", c.Format)
	assert.Equal(t, "https://gov.example/report.pdf", c.DownloadURL)
	assert.Equal(t, "2023-05-01", c.PublishedDate)
	assert.Equal(t, "gov.example", c.Domain)
}

func TestSnippetShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "short text", Snippet("short text"))
}

func TestSnippetTruncatesAtWordBoundary(t *testing.T) {
	text := strings.Repeat("word ", 100) // 500 chars
	got := Snippet(text)

	assert.LessOrEqual(t, len(got), 303)
	assert.True(t, strings.HasSuffix(got, "..."))
	// no split word: everything before the ellipsis is whole words
	for _, w := range strings.Fields(strings.TrimSuffix(got, "...")) {
		assert.Equal(t, "word", w)
	}
}

func TestSnippetHardCutWithoutBoundary(t *testing.T) {
	text := strings.Repeat("x", 400)
	got := Snippet(text)
	assert.Equal(t, strings.Repeat("x", 300)+"...", got)
}

func TestSnippetMultibyteBoundaryWindow(t *testing.T) {
	// the only space sits at rune 150 — outside the last 30% of the
	// window — so multibyte text must hard-cut at 300 runes, even though
	// the space's byte offset is past the threshold
	text := strings.Repeat("é", 150) + " " + strings.Repeat("é", 300)
	got := Snippet(text)

	require.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, 300, len([]rune(strings.TrimSuffix(got, "..."))))
}

func TestSnippetMultibyteWordBoundary(t *testing.T) {
	text := strings.Repeat("é ", 200) // space at every other rune
	got := Snippet(text)

	assert.True(t, strings.HasSuffix(got, "..."))
	trimmed := strings.TrimSuffix(got, "...")
	assert.False(t, strings.HasSuffix(trimmed, " "))
	assert.LessOrEqual(t, len([]rune(trimmed)), 300)
	assert.GreaterOrEqual(t, len([]rune(trimmed)), 210)
}
