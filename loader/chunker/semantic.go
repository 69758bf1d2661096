package chunker

import (
	"fmt"

	"govrag/types"
	"govrag/vecmath"
)

// Semantic walks the sentences left to right and closes the open chunk when
// it hits MaxChunkSize sentences, or when it holds at least MinChunkSize
// sentences and the mean cosine similarity between the candidate sentence
// and up to BufferSize preceding in-chunk sentences drops below
// SimilarityThreshold. Remaining sentences are flushed as a final chunk even
// below MinChunkSize.
//
// Similarity here is raw cosine in [-1,1]; the threshold is tuned in that
// range. Citation scoring maps cosine to [0,1] instead — the two scales are
// intentionally different.
func Semantic(sentences []types.SentenceUnit, embeddings [][]float32, documentName string, cfg types.IngestConfig) ([]types.Chunk, error) {
	if len(sentences) != len(embeddings) {
		return nil, fmt.Errorf("got %d sentences but %d embeddings", len(sentences), len(embeddings))
	}
	if len(sentences) == 0 {
		return nil, nil
	}

	var chunks []types.Chunk
	start := 0

	emit := func(end int) {
		chunks = append(chunks, buildChunk(sentences[start:end], documentName, len(chunks)))
		start = end
	}

	for i := 1; i < len(sentences); i++ {
		open := i - start

		if open >= cfg.MaxChunkSize {
			emit(i)
			continue
		}
		if open < cfg.MinChunkSize {
			continue
		}

		bufStart := i - cfg.BufferSize
		if bufStart < start {
			bufStart = start
		}
		if vecmath.Mean(embeddings[i], embeddings[bufStart:i]) < cfg.SimilarityThreshold {
			emit(i)
		}
	}

	emit(len(sentences))
	return chunks, nil
}
