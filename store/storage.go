package store

import (
	"context"
	"errors"

	"govrag/types"
)

// ErrEmptyFilter guards destructive filter operations against matching the
// whole index.
var ErrEmptyFilter = errors.New("filter must set at least one field")

// Filter narrows searches and deletes to records whose metadata matches
// every set field.
type Filter struct {
	DocumentName string
	SourceURL    string
}

func (f Filter) IsZero() bool {
	return f.DocumentName == "" && f.SourceURL == ""
}

func (f Filter) Matches(m types.Metadata) bool {
	if f.DocumentName != "" && f.DocumentName != m.DocumentName {
		return false
	}
	if f.SourceURL != "" && f.SourceURL != m.SourceURL {
		return false
	}
	return true
}

// Stats reports basic index statistics.
type Stats struct {
	Count int64 `json:"count"`
}

// VectorStorer is the vector store contract. Hit scores are cosine
// similarity mapped to [0,1]; results come back in descending score order.
// Implementations must be safe for concurrent use.
type VectorStorer interface {
	Upsert(ctx context.Context, records []types.Record) error
	Search(ctx context.Context, vector []float32, filter *Filter, topK int) ([]types.SearchHit, error)
	DeleteByFilter(ctx context.Context, filter Filter) error
	Stats(ctx context.Context) (Stats, error)
}

// SanitizeMetadata coerces nil values to type-appropriate defaults so no
// null ever reaches the index. Metadata stays flat by construction.
func SanitizeMetadata(m types.Metadata) types.Metadata {
	if m.PageNumbers == nil {
		m.PageNumbers = []int{}
	}
	if m.Extra == nil {
		m.Extra = map[string]string{}
	}
	return m
}
