// Package citations scores, formats and deduplicates loosely-structured
// content (typically crawled pages) into uniform citation records.
package citations

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"

	"govrag/model"
	"govrag/types"
	"govrag/vecmath"
)

const (
	// scoreTextCap bounds how much of each item is embedded for scoring.
	scoreTextCap = 1000
	snippetLen   = 300
	// A word boundary is acceptable only inside the last 30% of the
	// snippet window; otherwise the text is cut hard.
	boundaryWindow = 0.7
)

// ContentItem is one scored candidate, e.g. a crawled page. Only Text and
// URL are required; the rest is carried through to the citation when set.
type ContentItem struct {
	Text          string `json:"text" validate:"required"`
	URL           string `json:"url" validate:"required"`
	Title         string `json:"title,omitempty"`
	CrawledAt     string `json:"crawledAt,omitempty"`
	DownloadURL   string `json:"downloadUrl,omitempty"`
	Publisher     string `json:"publisher,omitempty"`
	Format        string `json:"format,omitempty"`
	Type          string `json:"type,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
	ModifiedDate  string `json:"modifiedDate,omitempty"`
}

type Scorer struct {
	embedder model.Embedder
}

func NewScorer(embedder model.Embedder) *Scorer {
	return &Scorer{embedder: embedder}
}

// ProcessCitations scores each content item against the query, keeps the
// topK best, formats them as citations and drops URL duplicates. Scoring
// runs before deduplication so the surviving duplicate is the best-scoring
// one; dropped duplicates may leave fewer than topK citations. Scores are
// cosine similarity mapped to [0,1].
func (s *Scorer) ProcessCitations(ctx context.Context, query string, content []ContentItem, topK int) ([]types.Citation, error) {
	if len(content) == 0 || topK <= 0 {
		return []types.Citation{}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	texts := make([]string, len(content))
	for i, item := range content {
		texts[i] = capText(item.Text, scoreTextCap)
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	type scored struct {
		item  ContentItem
		score float64
	}
	items := make([]scored, len(content))
	for i, item := range content {
		items[i] = scored{item: item, score: normalizeScore(vecmath.Cosine(queryVec, vectors[i]))}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })
	if topK < len(items) {
		items = items[:topK]
	}

	// Dedupe after selection: a dropped duplicate shrinks the output
	// rather than pulling in a lower-scoring item.
	seen := make(map[string]struct{})
	citations := make([]types.Citation, 0, len(items))
	for _, it := range items {
		key := strings.ToLower(it.item.URL)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		citations = append(citations, formatCitation(it.item, it.score))
	}
	return citations, nil
}

func formatCitation(item ContentItem, score float64) types.Citation {
	return types.Citation{
		ID:             uuid.New(),
		URL:            item.URL,
		Title:          item.Title,
		Snippet:        Snippet(item.Text),
		RelevanceScore: score,
		Domain:         domainOf(item.URL),
		HighlightText:  item.Text,
		CrawledAt:      item.CrawledAt,
		DownloadURL:    item.DownloadURL,
		Publisher:      item.Publisher,
		Format:         item.Format,
		Type:           item.Type,
		PublishedDate:  item.PublishedDate,
		ModifiedDate:   item.ModifiedDate,
	}
}

// Snippet truncates text to 300 characters, preferring the last word
// boundary when one falls inside the final 30% of the window. Texts at or
// under the limit come back unchanged. Positions are counted in runes so
// multibyte text does not skew the boundary window.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLen {
		return text
	}
	window := runes[:snippetLen]
	boundary := -1
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == ' ' {
			boundary = i
			break
		}
	}
	if boundary >= int(float64(snippetLen)*boundaryWindow) {
		window = window[:boundary]
	}
	return string(window) + "..."
}

// normalizeScore maps cosine similarity from [-1,1] to [0,1], clamped
// against floating point drift.
func normalizeScore(cos float64) float64 {
	score := (cos + 1) / 2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func capText(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
