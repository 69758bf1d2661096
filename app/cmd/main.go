package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"govrag/app/server"
	"govrag/model"
	"govrag/types"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	cfg := configFromEnv()
	s := server.NewServer(cfg, nil)

	go func() {
		if err := s.Run(); err != nil {
			log.Fatal("server failed: ", err)
		}
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}

func mustLoadEnvVariables() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}

func configFromEnv() server.Config {
	ingest := types.DefaultIngestConfig()
	ingest.Strategy = types.ChunkingStrategy(getEnv("CHUNK_STRATEGY", string(ingest.Strategy)))
	ingest.SimilarityThreshold = getEnvFloat("SIMILARITY_THRESHOLD", ingest.SimilarityThreshold)
	ingest.MinChunkSize = getEnvInt("MIN_CHUNK_SIZE", ingest.MinChunkSize)
	ingest.MaxChunkSize = getEnvInt("MAX_CHUNK_SIZE", ingest.MaxChunkSize)
	ingest.MaxWorkers = getEnvInt("MAX_WORKERS", ingest.MaxWorkers)

	return server.Config{
		ListenAddr:       getEnv("SERVER_ADDR", ":8080"),
		PostgresURL:      os.Getenv("POSTGRES_URL"),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		MaxContextTokens: getEnvInt("MAX_CONTEXT_TOKENS", 3000),
		Embedding: model.EmbedderConfig{
			BaseURL:    os.Getenv("EMBEDDING_URL"),
			APIKey:     os.Getenv("EMBEDDING_API_KEY"),
			Model:      os.Getenv("EMBEDDING_MODEL"),
			Dimension:  getEnvInt("EMBEDDING_DIMENSION", 1536),
			BatchSize:  getEnvInt("EMBEDDING_BATCH_SIZE", ingest.EmbeddingBatchSize),
			MaxRetries: getEnvInt("EMBEDDING_MAX_RETRIES", 3),
			Timeout:    30 * time.Second,
		},
		Rerank: model.RerankerConfig{
			BaseURL: os.Getenv("RERANK_URL"),
			APIKey:  os.Getenv("RERANK_API_KEY"),
			Model:   os.Getenv("RERANK_MODEL"),
		},
		Chat: model.ChatConfig{
			BaseURL: os.Getenv("LLM_URL"),
			APIKey:  os.Getenv("LLM_API_KEY"),
			Model:   os.Getenv("LLM_MODEL"),
		},
		Ingest: ingest,
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

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
