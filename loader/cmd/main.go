package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"govrag/loader/extract"
	"govrag/loader/pipeline"
	"govrag/model"
	"govrag/store"
	"govrag/types"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	var (
		dir       = flag.String("dir", getEnv("LOADER_SOURCE_DIR", "assets/source_files"), "directory with files to ingest")
		strategy  = flag.String("strategy", getEnv("CHUNK_STRATEGY", string(types.StrategySemantic)), "chunking strategy: semantic or fixed")
		sourceURL = flag.String("source-url", "", "optional source URL recorded in metadata")
	)
	flag.Parse()

	cfg := types.DefaultIngestConfig()
	cfg.Strategy = types.ChunkingStrategy(*strategy)
	if errors := cfg.Validate(); len(errors) > 0 {
		log.Fatal("invalid ingest config: ", errors)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pg, err := store.NewPostgresStore(ctx, os.Getenv("POSTGRES_URL"), getEnvInt("EMBEDDING_DIMENSION", 1536))
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
	}
	defer pg.Close()

	if err := pg.Init(ctx); err != nil {
		log.Fatal("error to create tables: ", err)
	}

	embedder := model.NewOpenAIEmbedder(model.EmbedderConfig{
		BaseURL:    os.Getenv("EMBEDDING_URL"),
		APIKey:     os.Getenv("EMBEDDING_API_KEY"),
		Model:      os.Getenv("EMBEDDING_MODEL"),
		Dimension:  getEnvInt("EMBEDDING_DIMENSION", 1536),
		BatchSize:  cfg.EmbeddingBatchSize,
		MaxRetries: 3,
		Timeout:    30 * time.Second,
	})

	files, err := collectFiles(*dir, *sourceURL)
	if err != nil {
		log.Fatal(err)
	}
	if len(files) == 0 {
		log.Printf("no supported files in %s, nothing to do", *dir)
		return
	}

	start := time.Now()
	results := pipeline.New(embedder, pg, cfg, nil).ProcessFilesParallel(ctx, files)

	summary := types.Summarize(results)
	for _, r := range results {
		if r.Success {
			fmt.Printf("  ok   %s: %d chunks, %d vectors\n", r.Filename, r.ChunksCount, r.VectorsUploaded)
		} else {
			fmt.Printf("  FAIL %s: %s\n", r.Filename, r.Error)
		}
	}
	fmt.Printf("processed %d files (%d failed), %d vectors in %v\n",
		summary.FilesProcessed, summary.FilesFailed, summary.VectorsUploaded, time.Since(start))

	if summary.FilesFailed > 0 {
		os.Exit(1)
	}
}

func collectFiles(dir, sourceURL string) ([]pipeline.FileInput, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}

	var files []pipeline.FileInput
	for _, entry := range entries {
		if entry.IsDir() || !extract.IsSupported(entry.Name()) {
			continue
		}
		files = append(files, pipeline.FileInput{
			Path:      filepath.Join(dir, entry.Name()),
			Filename:  entry.Name(),
			SourceURL: sourceURL,
		})
	}
	return files, nil
}

func mustLoadEnvVariables() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
