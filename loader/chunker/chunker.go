// Package chunker groups sentence units into the chunks that get embedded
// and indexed.
package chunker

import (
	"sort"
	"strings"

	"govrag/types"
)

func buildChunk(sentences []types.SentenceUnit, documentName string, chunkIndex int) types.Chunk {
	texts := make([]string, len(sentences))
	seen := make(map[int]struct{})
	var pages []int
	for i, s := range sentences {
		texts[i] = s.Text
		if _, ok := seen[s.PageNumber]; !ok {
			seen[s.PageNumber] = struct{}{}
			pages = append(pages, s.PageNumber)
		}
	}
	sort.Ints(pages)

	return types.Chunk{
		Text:          strings.Join(texts, " "),
		DocumentName:  documentName,
		PageNumbers:   pages,
		ChunkIndex:    chunkIndex,
		SentenceCount: len(sentences),
	}
}
