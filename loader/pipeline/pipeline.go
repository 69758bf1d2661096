// Package pipeline orchestrates extraction, chunking, embedding and indexing
// for one or many files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"govrag/loader/chunker"
	"govrag/loader/extract"
	"govrag/model"
	"govrag/store"
	"govrag/types"
)

// ErrNoTextExtracted means the document produced zero sentences. Fatal for
// that file only.
var ErrNoTextExtracted = errors.New("no text extracted")

// FileInput names one file to ingest. SourceURL optionally records a
// canonical storage link carried into every record's metadata.
type FileInput struct {
	Path      string
	Filename  string
	SourceURL string
}

// Pipeline runs extract → chunk → embed → upsert for single files and file
// batches. Constructed once and shared; all fields are read-only after New.
type Pipeline struct {
	extractor *extract.Extractor
	embedder  model.Embedder
	store     store.VectorStorer
	cfg       types.IngestConfig
	logger    *slog.Logger
}

func New(embedder model.Embedder, storer store.VectorStorer, cfg types.IngestConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor: extract.NewExtractor(cfg.HeaderCrop, cfg.FooterCrop),
		embedder:  embedder,
		store:     storer,
		cfg:       cfg,
		logger:    logger,
	}
}

// ProcessSingleFile ingests one file. Errors are captured in the result and
// never abort sibling files.
func (p *Pipeline) ProcessSingleFile(ctx context.Context, in FileInput) types.ProcessResult {
	documentName := extract.DocumentName(in.Filename)
	result := types.ProcessResult{
		Filename:     in.Filename,
		DocumentName: documentName,
	}

	fail := func(err error) types.ProcessResult {
		p.logger.Error("file ingestion failed", "filename", in.Filename, "error", err)
		result.Error = err.Error()
		return result
	}

	units, err := p.extractor.Extract(in.Path)
	if err != nil {
		return fail(fmt.Errorf("extract: %w", err))
	}
	if len(units) == 0 {
		return fail(ErrNoTextExtracted)
	}

	chunks, err := p.buildChunks(ctx, units, documentName)
	if err != nil {
		return fail(err)
	}
	if len(chunks) == 0 {
		return fail(fmt.Errorf("no chunks created"))
	}
	result.ChunksCount = len(chunks)
	p.logger.Info("created chunks", "filename", in.Filename, "chunks", len(chunks), "strategy", p.cfg.Strategy)

	// The document name contributes to relevance, so it is embedded
	// alongside the chunk text.
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = fmt.Sprintf("Document: %s\n\n%s", documentName, c.Text)
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fail(fmt.Errorf("embed chunks: %w", err))
	}

	records := make([]types.Record, len(chunks))
	for i, c := range chunks {
		records[i] = types.Record{
			ID:     uuid.New(),
			Vector: vectors[i],
			Metadata: types.Metadata{
				DocumentName: c.DocumentName,
				PageNumbers:  c.PageNumbers,
				ChunkIndex:   c.ChunkIndex,
				SourceURL:    in.SourceURL,
				Text:         c.Text,
			},
		}
	}

	uploaded, upsertErr := p.upsertBatched(ctx, records)
	result.VectorsUploaded = uploaded
	if upsertErr != nil {
		return fail(upsertErr)
	}

	result.Success = true
	p.logger.Info("file ingested", "filename", in.Filename, "chunks", result.ChunksCount, "vectors", result.VectorsUploaded)
	return result
}

func (p *Pipeline) buildChunks(ctx context.Context, units []types.SentenceUnit, documentName string) ([]types.Chunk, error) {
	switch p.cfg.Strategy {
	case types.StrategyFixed:
		return chunker.Fixed(units, documentName, p.cfg), nil
	case types.StrategySemantic:
		sentences := make([]string, len(units))
		for i, u := range units {
			sentences[i] = u.Text
		}
		embeddings, err := p.embedder.EmbedBatch(ctx, sentences)
		if err != nil {
			return nil, fmt.Errorf("embed sentences: %w", err)
		}
		return chunker.Semantic(units, embeddings, documentName, p.cfg)
	default:
		return nil, fmt.Errorf("unknown chunking strategy %q", p.cfg.Strategy)
	}
}

// upsertBatched writes records in UpsertBatchSize slices. A failed batch
// loses that batch only; later batches still run and earlier ones stay
// indexed.
func (p *Pipeline) upsertBatched(ctx context.Context, records []types.Record) (int, error) {
	uploaded := 0
	var batchErrs []error

	for start := 0; start < len(records); start += p.cfg.UpsertBatchSize {
		end := start + p.cfg.UpsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := p.store.Upsert(ctx, records[start:end]); err != nil {
			p.logger.Error("upsert batch failed", "from", start, "to", end, "error", err)
			batchErrs = append(batchErrs, err)
			continue
		}
		uploaded += end - start
	}

	if len(batchErrs) > 0 {
		return uploaded, fmt.Errorf("uploaded %d of %d vectors: %w", uploaded, len(records), errors.Join(batchErrs...))
	}
	return uploaded, nil
}

// ProcessFilesParallel ingests files with up to MaxWorkers running at once.
// Each result carries its own filename; order is not tied to input order.
func (p *Pipeline) ProcessFilesParallel(ctx context.Context, files []FileInput) []types.ProcessResult {
	workers := p.cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	results := make([]types.ProcessResult, len(files))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, f := range files {
		wg.Add(1)
		go func(i int, f FileInput) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = p.ProcessSingleFile(ctx, f)
		}(i, f)
	}
	wg.Wait()

	return results
}
