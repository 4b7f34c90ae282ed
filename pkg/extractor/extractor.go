package extractor

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// ErrUnsupportedType is returned when the file extension has no registered parser.
var ErrUnsupportedType = errors.New("unsupported file type")

// Extract reads the file at path and returns its raw text, dispatching on
// the (lowercased) file extension. Supported: .pdf, .md, .txt, .csv.
// A missing file surfaces the underlying os error; an unknown extension
// returns ErrUnsupportedType.
func Extract(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(ctx, path)
	case ".txt", ".md":
		return extractPlainText(path)
	case ".csv":
		return extractCSV(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}
}

func extractPDF(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	loader := documentloaders.NewPDF(f, info.Size())
	docs, err := loader.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("pdf extraction failed: %w", err)
	}

	// Concatenate page-by-page, skipping pages with no extractable text.
	var sb strings.Builder
	for _, doc := range docs {
		if strings.TrimSpace(doc.PageContent) == "" {
			continue
		}
		sb.WriteString(doc.PageContent)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// extractCSV renders the table as one line per record so the chunker sees
// row-aligned text, mirroring how spreadsheets read aloud.
func extractCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("csv extraction failed: %w", err)
	}

	var sb strings.Builder
	for _, record := range records {
		sb.WriteString(strings.Join(record, ", "))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
