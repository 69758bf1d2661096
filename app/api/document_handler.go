package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"govrag/store"
)

type DocumentHandler struct {
	store store.VectorStorer
}

func NewDocumentHandler(s store.VectorStorer) *DocumentHandler {
	return &DocumentHandler{store: s}
}

func (h *DocumentHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.store.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"records": stats.Count})
}

// HandleDelete removes every record of the named document.
func (h *DocumentHandler) HandleDelete(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return ErrBadRequest()
	}

	err := h.store.DeleteByFilter(c.Context(), store.Filter{DocumentName: name})
	if errors.Is(err, store.ErrEmptyFilter) {
		return ErrBadRequest()
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": name})
}
