package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// cropHeaderFooter trims page headers and footers before text extraction.
// top and bottom are in points (1 pt = 1/72 inch).
func cropHeaderFooter(inputPath, outputPath string, top, bottom float64) error {
	conf := api.LoadConfiguration()

	pages := []string{"1-"}

	cropStr := fmt.Sprintf("%.2f 0 %.2f 0", top, bottom)
	box, err := model.ParseBox(cropStr, pdftypes.POINTS)
	if err != nil {
		return fmt.Errorf("failed to parse crop box: %w", err)
	}

	if err := api.CropFile(inputPath, outputPath, pages, box, conf); err != nil {
		return fmt.Errorf("failed to crop PDF: %w", err)
	}

	return nil
}

// cropToTemp writes a cropped copy of the PDF to a temp file and returns its
// path together with a cleanup func.
func cropToTemp(path string, top, bottom float64) (string, func(), error) {
	tmp, err := os.CreateTemp("", "cropped-*"+filepath.Ext(path))
	if err != nil {
		return "", nil, err
	}
	tmp.Close()

	if err := cropHeaderFooter(path, tmp.Name(), top, bottom); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}
	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}
