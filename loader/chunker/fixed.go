package chunker

import (
	"govrag/types"
)

// Fixed slides a WindowSize-sentence window with Overlap sentences of
// overlap. It needs no embeddings and serves as the always-available
// fallback strategy.
func Fixed(sentences []types.SentenceUnit, documentName string, cfg types.IngestConfig) []types.Chunk {
	if len(sentences) == 0 {
		return nil
	}

	step := cfg.WindowSize - cfg.Overlap
	if step < 1 {
		step = 1
	}

	var chunks []types.Chunk
	for i := 0; i < len(sentences); i += step {
		end := i + cfg.WindowSize
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, buildChunk(sentences[i:end], documentName, len(chunks)))
		if end == len(sentences) {
			break
		}
	}
	return chunks
}
