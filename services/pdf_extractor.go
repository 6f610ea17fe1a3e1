package services

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts text from PDF bytes using ledongthuc/pdf.
// It satisfies TextSource for the extraction pipeline.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDF extractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// sanitizePDF truncates trailing garbage after the last %%EOF marker.
// PDFs downloaded from the web often carry HTML or tracker payloads
// appended past the end of the document.
func sanitizePDF(content []byte) []byte {
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return content
	}

	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)
	if lastEOF == -1 {
		// Truncated PDF; let the parser report it
		return content
	}

	pdfEnd := lastEOF + len(eofMarker)
	for pdfEnd < len(content) && (content[pdfEnd] == '\n' || content[pdfEnd] == '\r') {
		pdfEnd++
	}

	if extra := len(content) - pdfEnd; extra > 10 {
		log.Printf("PDF Sanitizer: Removing %d bytes of trailing garbage after %%EOF", extra)
		return content[:pdfEnd]
	}

	return content
}

// ExtractText extracts text from PDF bytes. Row-based extraction
// preserves document structure (option rows, answer tables) better
// than plain text; it falls back to plain text per page.
func (p *PDFExtractor) ExtractText(content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty PDF content")
	}

	content = sanitizePDF(content)

	pdfReader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	numPages := pdfReader.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var textBuilder strings.Builder

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			log.Printf("PDF Extractor: Page %d is null, skipping", i)
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			text, plainErr := page.GetPlainText(nil)
			if plainErr != nil {
				log.Printf("PDF Extractor: Failed to extract page %d: %v", i, plainErr)
				continue
			}
			textBuilder.WriteString(text)
			textBuilder.WriteString("\n")
			continue
		}

		for _, row := range rows {
			var rowText strings.Builder
			for _, word := range row.Content {
				rowText.WriteString(word.S)
			}
			line := strings.TrimSpace(rowText.String())
			if line != "" {
				textBuilder.WriteString(line)
				textBuilder.WriteString("\n")
			}
		}
		textBuilder.WriteString("\n") // Separate pages
	}

	extracted := strings.TrimSpace(textBuilder.String())

	if len(extracted) < minExtractableText {
		return "", fmt.Errorf("insufficient text extracted from PDF (only %d characters) - PDF may be scanned/image-based and requires OCR", len(extracted))
	}

	log.Printf("PDF Extractor: Extracted %d characters from %d pages", len(extracted), numPages)

	return extracted, nil
}

// GetPageCount returns the total number of pages in the PDF
func (p *PDFExtractor) GetPageCount(content []byte) (int, error) {
	if len(content) == 0 {
		return 0, fmt.Errorf("empty PDF content")
	}

	content = sanitizePDF(content)

	pdfReader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}

	return pdfReader.NumPage(), nil
}
