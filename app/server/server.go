package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"govrag/app/agent"
	"govrag/app/api"
	"govrag/citations"
	"govrag/loader/pipeline"
	"govrag/model"
	"govrag/retriever"
	"govrag/store"
	"govrag/types"
)

// Config carries everything the server needs, resolved once at startup and
// passed in explicitly.
type Config struct {
	ListenAddr       string
	PostgresURL      string
	UploadDir        string
	MaxContextTokens int

	Embedding model.EmbedderConfig
	Rerank    model.RerankerConfig
	Chat      model.ChatConfig
	Ingest    types.IngestConfig
}

type Server struct {
	cfg    Config
	app    *fiber.App
	store  *store.PostgresStore
	logger *slog.Logger
}

func NewServer(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Server) Run() error {
	if errs := s.cfg.Ingest.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid ingest config: %v", errs)
	}

	ctx := context.Background()

	pg, err := store.NewPostgresStore(ctx, s.cfg.PostgresURL, s.cfg.Embedding.Dimension)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	s.store = pg
	if err := pg.Init(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	var (
		embedder = model.NewOpenAIEmbedder(s.cfg.Embedding)
		reranker = retriever.NewReranker(model.NewCohereReranker(s.cfg.Rerank), s.logger)
		chat     = model.NewOpenAIChat(s.cfg.Chat)

		rtr = retriever.New(embedder, pg, reranker, s.logger)
		ag  = agent.New(chat, s.cfg.MaxContextTokens, s.logger)
		pl  = pipeline.New(embedder, pg, s.cfg.Ingest, s.logger)
	)

	s.app = fiber.New(fiber.Config{
		ErrorHandler: api.ErrorHandler,
		BodyLimit:    64 * 1024 * 1024,
	})

	var (
		checkHandler    = api.NewCheckHandler()
		queryHandler    = api.NewQueryHandler(rtr, ag)
		ingestHandler   = api.NewIngestHandler(pl, s.cfg.UploadDir)
		documentHandler = api.NewDocumentHandler(pg)
		citationHandler = api.NewCitationHandler(citations.NewScorer(embedder))

		check = s.app.Group("/check")
		apiv1 = s.app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/query", queryHandler.HandleQuery)
	apiv1.Post("/ingest", ingestHandler.HandleIngest)
	apiv1.Get("/documents", documentHandler.HandleStats)
	apiv1.Delete("/documents/:name", documentHandler.HandleDelete)
	apiv1.Post("/citations", citationHandler.HandleCitations)

	s.logger.Info("server listening", "addr", s.cfg.ListenAddr)
	return s.app.Listen(s.cfg.ListenAddr)
}

func (s *Server) Stop() {
	if s.app != nil {
		if err := s.app.Shutdown(); err != nil {
			s.logger.Error("shutdown failed", "error", err)
		}
	}
	if s.store != nil {
		s.store.Close()
	}
	s.logger.Info("server stopped")
}
