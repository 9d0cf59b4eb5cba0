package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat marks a file extension no extractor can handle.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extractor turns a staged document into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Service dispatches to a format-specific extractor based on file extension.
type Service struct {
	pdf  Extractor
	docx Extractor
}

// NewService returns a service covering the supported formats.
func NewService() *Service {
	return &Service{
		pdf:  NewCommandPDFExtractor(""),
		docx: &DocxExtractor{},
	}
}

// Extract returns the plain text of the file at path. The extension of path
// decides the format; unknown extensions yield ErrUnsupportedFormat.
func (s *Service) Extract(ctx context.Context, path string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("extract: service is nil")
	}
	if path == "" {
		return "", fmt.Errorf("extract: path is empty")
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return s.pdf.Extract(ctx, path)
	case ".docx":
		return s.docx.Extract(ctx, path)
	default:
		return "", fmt.Errorf("extract: %w: %q", ErrUnsupportedFormat, ext)
	}
}
