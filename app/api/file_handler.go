package api

import (
	"fmt"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"govrag/loader/extract"
	"govrag/loader/pipeline"
	"govrag/types"
)

type IngestHandler struct {
	pipeline  *pipeline.Pipeline
	uploadDir string
}

func NewIngestHandler(p *pipeline.Pipeline, uploadDir string) *IngestHandler {
	return &IngestHandler{
		pipeline:  p,
		uploadDir: uploadDir,
	}
}

// HandleIngest accepts one or more files in the "files" multipart field,
// saves them to the upload dir and runs the ingestion pipeline. An optional
// "source_url" field is recorded in every uploaded record's metadata.
func (h *IngestHandler) HandleIngest(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return ErrBadRequest()
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return ErrBadRequest()
	}
	sourceURL := c.FormValue("source_url")

	inputs := make([]pipeline.FileInput, 0, len(headers))
	for _, header := range headers {
		if !extract.IsSupported(header.Filename) {
			return NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("unsupported file type: %s", header.Filename))
		}
		path := filepath.Join(h.uploadDir, filepath.Base(header.Filename))
		if err := c.SaveFile(header, path); err != nil {
			return fmt.Errorf("save %s: %w", header.Filename, err)
		}
		inputs = append(inputs, pipeline.FileInput{
			Path:      path,
			Filename:  header.Filename,
			SourceURL: sourceURL,
		})
	}

	results := h.pipeline.ProcessFilesParallel(c.Context(), inputs)
	return c.JSON(types.Summarize(results))
}
