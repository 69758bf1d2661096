package types

import (
	"github.com/google/uuid"
)

// SentenceUnit is a single extracted sentence tagged with the page it
// appeared on. Plain-text documents use page 1 for every sentence.
type SentenceUnit struct {
	Text       string
	PageNumber int
}

// Chunk is a contiguous group of sentences from one document, the unit that
// gets embedded and indexed. PageNumbers is sorted and free of duplicates;
// ChunkIndex increases monotonically within a document.
type Chunk struct {
	Text          string
	DocumentName  string
	PageNumbers   []int
	ChunkIndex    int
	SentenceCount int
}

// Metadata travels with every indexed record. Values are primitives or flat
// lists of primitives only; Extra holds additional flat string metadata.
type Metadata struct {
	DocumentName string            `json:"document_name"`
	PageNumbers  []int             `json:"page_numbers"`
	ChunkIndex   int               `json:"chunk_index"`
	SourceURL    string            `json:"source_url,omitempty"`
	Text         string            `json:"text"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// Record is what the vector store persists. The id is generated at upsert
// time and carries no document identity beyond its metadata.
type Record struct {
	ID       uuid.UUID
	Vector   []float32
	Metadata Metadata
}

// SearchHit is a single nearest-neighbour result with a score in [0,1].
type SearchHit struct {
	ID       uuid.UUID `json:"id"`
	Score    float64   `json:"score"`
	Metadata Metadata  `json:"metadata"`
}

// ChunkingStrategy selects how sentences are grouped into chunks.
type ChunkingStrategy string

const (
	// StrategySemantic splits at embedding-similarity boundaries.
	StrategySemantic ChunkingStrategy = "semantic"
	// StrategyFixed is the sliding-window fallback that needs no
	// per-sentence embeddings.
	StrategyFixed ChunkingStrategy = "fixed"
)

// ProcessResult is the per-file outcome of an ingestion run.
type ProcessResult struct {
	Success         bool   `json:"success"`
	Filename        string `json:"filename"`
	DocumentName    string `json:"document_name,omitempty"`
	ChunksCount     int    `json:"chunks_count"`
	VectorsUploaded int    `json:"vectors_uploaded"`
	Error           string `json:"error,omitempty"`
}

// IngestSummary aggregates results across files.
type IngestSummary struct {
	FilesProcessed  int             `json:"files_processed"`
	FilesFailed     int             `json:"files_failed"`
	ChunksCount     int             `json:"chunks_count"`
	VectorsUploaded int             `json:"vectors_uploaded"`
	Results         []ProcessResult `json:"results"`
}

// Summarize folds per-file results into an aggregate report.
func Summarize(results []ProcessResult) IngestSummary {
	s := IngestSummary{Results: results}
	for _, r := range results {
		if r.Success {
			s.FilesProcessed++
			s.ChunksCount += r.ChunksCount
			s.VectorsUploaded += r.VectorsUploaded
		} else {
			s.FilesFailed++
		}
	}
	return s
}

// Citation is a normalized, deduplicated pointer to a source passage.
type Citation struct {
	ID             uuid.UUID `json:"id"`
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	Snippet        string    `json:"snippet"`
	RelevanceScore float64   `json:"relevanceScore"`
	Domain         string    `json:"domain"`
	HighlightText  string    `json:"highlightText"`
	CrawledAt      string    `json:"crawledAt,omitempty"`
	DownloadURL    string    `json:"downloadUrl,omitempty"`
	Publisher      string    `json:"publisher,omitempty"`
	Format         string    `json:"format,omitempty"`
	Type           string    `json:"type,omitempty"`
	PublishedDate  string    `json:"publishedDate,omitempty"`
	ModifiedDate   string    `json:"modifiedDate,omitempty"`
}
