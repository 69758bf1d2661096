package api

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"govrag/citations"
)

type CitationHandler struct {
	scorer *citations.Scorer
}

func NewCitationHandler(s *citations.Scorer) *CitationHandler {
	return &CitationHandler{scorer: s}
}

// CitationParams is the body of a citation-scoring request. Content comes
// from the crawling subsystem, which lives outside this service.
type CitationParams struct {
	Query   string                  `json:"query" validate:"required"`
	TopK    int                     `json:"top_k" validate:"gte=1,lte=50"`
	Content []citations.ContentItem `json:"content" validate:"required,min=1,dive"`
}

func (params *CitationParams) Validate() map[string]string {
	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

func (h *CitationHandler) HandleCitations(c *fiber.Ctx) error {
	var params CitationParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := params.Validate(); len(errors) > 0 {
		return NewValidationError(errors)
	}

	cites, err := h.scorer.ProcessCitations(c.Context(), params.Query, params.Content, params.TopK)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"citations": cites})
}
