package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// IngestConfig bundles every tunable of the ingestion pipeline. It is built
// once at startup and passed by reference; nothing in the pipeline mutates it.
type IngestConfig struct {
	Strategy ChunkingStrategy `json:"chunking_strategy" validate:"oneof=semantic fixed"`

	// Semantic chunking.
	SimilarityThreshold float64 `json:"similarity_threshold" validate:"gt=0,lt=1"`
	MinChunkSize        int     `json:"min_chunk_size" validate:"gte=1"`
	MaxChunkSize        int     `json:"max_chunk_size" validate:"gtefield=MinChunkSize"`
	BufferSize          int     `json:"buffer_size" validate:"gte=1"`

	// Fixed-size chunking.
	WindowSize int `json:"window_size" validate:"gte=1"`
	Overlap    int `json:"overlap" validate:"gte=0,ltfield=WindowSize"`

	// Provider request bounds.
	EmbeddingBatchSize int `json:"embedding_batch_size" validate:"gte=1"`
	UpsertBatchSize    int `json:"upsert_batch_size" validate:"gte=1"`
	MaxWorkers         int `json:"max_workers" validate:"gte=1"`

	// Optional PDF preprocessing, in points. Zero disables cropping.
	HeaderCrop float64 `json:"header_crop" validate:"gte=0"`
	FooterCrop float64 `json:"footer_crop" validate:"gte=0"`
}

// DefaultIngestConfig mirrors the tuning the corpus was indexed with.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		Strategy:            StrategySemantic,
		SimilarityThreshold: 0.75,
		MinChunkSize:        3,
		MaxChunkSize:        10,
		BufferSize:          3,
		WindowSize:          10,
		Overlap:             2,
		EmbeddingBatchSize:  32,
		UpsertBatchSize:     100,
		MaxWorkers:          4,
	}
}

func (cfg *IngestConfig) Validate() map[string]string {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}
