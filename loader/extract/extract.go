// Package extract converts raw documents into ordered sentence units tagged
// with page numbers.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"govrag/types"
)

// ErrUnsupportedFormat marks files the extractor cannot read. Fatal for that
// file only.
var ErrUnsupportedFormat = fmt.Errorf("unsupported file format")

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+[")'\]]*`)

// anonymization markers left in the corpus by the publishing authority
var anonMarkers = []string{" (geanonimiseerd)", "(geanonimiseerd)"}

// Extractor reads PDF and plain-text files into sentence units. Crop values
// are in points; zero disables header/footer cropping.
type Extractor struct {
	headerCrop float64
	footerCrop float64
}

func NewExtractor(headerCrop, footerCrop float64) *Extractor {
	return &Extractor{
		headerCrop: headerCrop,
		footerCrop: footerCrop,
	}
}

// IsSupported reports whether the extractor knows the file's format.
func IsSupported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

// DocumentName derives the display name of a document from its filename.
func DocumentName(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name = stripMarkers(name)
	return strings.TrimSpace(name)
}

// Extract returns the file's sentences in reading order. PDF sentences carry
// their page number; plain text is treated as a single page.
func (e *Extractor) Extract(path string) ([]types.SentenceUnit, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return e.extractPDF(path)
	case ".txt", ".md":
		return e.extractPlainText(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func (e *Extractor) extractPDF(path string) ([]types.SentenceUnit, error) {
	if e.headerCrop > 0 || e.footerCrop > 0 {
		cropped, cleanup, err := cropToTemp(path, e.headerCrop, e.footerCrop)
		if err == nil {
			defer cleanup()
			path = cropped
		}
		// Cropping is best effort: an uncroppable file is still readable.
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var units []types.SentenceUnit
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A broken page loses that page only.
			continue
		}
		for _, sentence := range SplitSentences(stripMarkers(text)) {
			units = append(units, types.SentenceUnit{
				Text:       sentence,
				PageNumber: pageNum,
			})
		}
	}
	return units, nil
}

func (e *Extractor) extractPlainText(path string) ([]types.SentenceUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	sentences := SplitSentences(stripMarkers(string(data)))
	units := make([]types.SentenceUnit, 0, len(sentences))
	for _, sentence := range sentences {
		units = append(units, types.SentenceUnit{
			Text:       sentence,
			PageNumber: 1,
		})
	}
	return units, nil
}

// SplitSentences splits text at terminal punctuation. A trailing fragment
// without terminal punctuation still counts as a sentence.
func SplitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentencePattern.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(collapseWhitespace(text[loc[0]:loc[1]])); s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if rest := strings.TrimSpace(collapseWhitespace(text[last:])); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

var whitespacePattern = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return whitespacePattern.ReplaceAllString(s, " ")
}

func stripMarkers(s string) string {
	for _, marker := range anonMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	return s
}
