package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const defaultPDFTimeout = 25 * time.Second

// CommandPDFExtractor converts a PDF to text via the pdftotext CLI. Page text
// comes back concatenated in page order.
type CommandPDFExtractor struct {
	binary  string
	timeout time.Duration
}

// NewCommandPDFExtractor returns an extractor using the pdftotext CLI.
func NewCommandPDFExtractor(bin string) *CommandPDFExtractor {
	if bin == "" {
		bin = os.Getenv("PDFTOTEXT_BIN")
	}
	if bin == "" {
		bin = "pdftotext"
	}
	return &CommandPDFExtractor{
		binary:  bin,
		timeout: defaultPDFTimeout,
	}
}

// Extract converts the PDF at path and returns the extracted text.
func (e *CommandPDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	if e == nil {
		return "", fmt.Errorf("pdf extractor is nil")
	}
	if path == "" {
		return "", fmt.Errorf("pdf path is empty")
	}

	tmpTxtFile, err := os.CreateTemp("", "document-*.txt")
	if err != nil {
		return "", err
	}
	tmpTxt := tmpTxtFile.Name()
	tmpTxtFile.Close()
	defer os.Remove(tmpTxt)

	cmdCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, e.binary, "-layout", path, tmpTxt)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}

	data, err := os.ReadFile(tmpTxt)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
