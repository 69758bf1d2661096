package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"govrag/app/agent"
	"govrag/retriever"
	"govrag/store"
	"govrag/types"
)

type QueryHandler struct {
	retriever *retriever.Retriever
	agent     *agent.Agent
}

func NewQueryHandler(r *retriever.Retriever, a *agent.Agent) *QueryHandler {
	return &QueryHandler{
		retriever: r,
		agent:     a,
	}
}

func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	var params types.QueryParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	opts := retriever.Options{
		TopK:     params.TopK,
		InitialK: params.InitialK,
		Rerank:   params.Rerank,
	}
	if params.DocumentName != "" {
		opts.Filter = &store.Filter{DocumentName: params.DocumentName}
	}

	hits, err := h.retriever.Query(c.Context(), params.Prompt, opts)
	if err != nil {
		return err
	}

	answer, err := h.agent.GenerateAnswer(c.Context(), params.Prompt, hits)
	if err != nil {
		return err
	}

	return c.JSON(&types.SearchResponse{
		Answer:    answer,
		Sources:   hits,
		Timestamp: time.Now(),
	})
}
