package resume

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// MinTextLength is the shortest extracted text accepted as a resume
	MinTextLength = 50
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type, please upload PDF or DOCX")
	ErrTooShort          = errors.New("could not extract enough text from the file, try a text-based PDF or DOCX")
)

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:tab\s*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
	blankLines       = regexp.MustCompile(`\n{3,}`)
)

// Format is a supported resume document format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// DetectFormat picks the document format by MIME type first, then by
// file extension.
func DetectFormat(mimeType, filename string) (Format, error) {
	switch mimeType {
	case MIMEPDF:
		return FormatPDF, nil
	case MIMEDOCX:
		return FormatDOCX, nil
	}

	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return FormatPDF, nil
	case "docx":
		return FormatDOCX, nil
	}

	kind := mimeType
	if kind == "" {
		kind = filepath.Ext(filename)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, kind)
}

// Extract returns the trimmed plain text of a PDF or DOCX document
func Extract(data []byte, mimeType, filename string) (string, error) {
	format, err := DetectFormat(mimeType, filename)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text), nil
}

// ValidateText rejects text too short to be a resume
func ValidateText(text string) error {
	if len([]rune(strings.TrimSpace(text))) < MinTextLength {
		return ErrTooShort
	}
	return nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxPlainText(doc.Editable().GetContent()), nil
}

// docxPlainText turns document.xml content into plain text
func docxPlainText(content string) string {
	text := docxParagraphEnd.ReplaceAllString(content, "\n")
	text = xmlTag.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	return blankLines.ReplaceAllString(text, "\n\n")
}
