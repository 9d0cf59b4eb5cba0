// validate_file runs one validation against a local document without the
// HTTP server. Useful for smoke-testing prompts and models.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hetulpatel/DocValidator/internal/extract"
	"github.com/hetulpatel/DocValidator/internal/llm"
	"github.com/hetulpatel/DocValidator/internal/logging"
	"github.com/hetulpatel/DocValidator/internal/validator"
)

type fileList []string

func (f *fileList) String() string {
	return strings.Join(*f, ",")
}

func (f *fileList) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func main() {
	godotenv.Load()
	logging.InitFromEnv()

	var (
		requirements = flag.String("requirements", "", "validation requirements text")
		docPath      = flag.String("document", "", "path to the PDF/DOCX to validate")
		percent      = flag.Int("percent", 70, "minimum passing percentage (0-100)")
		validFiles   fileList
		invalidFiles fileList
	)
	flag.Var(&validFiles, "valid-example", "path to a valid example document (repeatable)")
	flag.Var(&invalidFiles, "invalid-example", "path to an invalid example document (repeatable)")
	flag.Parse()

	if strings.TrimSpace(*requirements) == "" {
		logging.Fatalf("[validate-file] -requirements is required")
	}
	if *docPath == "" {
		logging.Fatalf("[validate-file] -document is required")
	}
	if *percent < 0 || *percent > 100 {
		logging.Fatalf("[validate-file] -percent must be between 0 and 100, got %d", *percent)
	}

	ctx := context.Background()
	extractor := extract.NewService()

	documentText, err := extractor.Extract(ctx, *docPath)
	if err != nil {
		logging.Fatalf("[validate-file] extract document: %v", err)
	}
	validText, err := extractAll(ctx, extractor, validFiles)
	if err != nil {
		logging.Fatalf("[validate-file] extract valid example: %v", err)
	}
	invalidText, err := extractAll(ctx, extractor, invalidFiles)
	if err != nil {
		logging.Fatalf("[validate-file] extract invalid example: %v", err)
	}

	llmClient, err := llm.New(llm.Config{
		APIKey:     os.Getenv("LLM_API_KEY"),
		BaseURL:    os.Getenv("LLM_BASE_URL"),
		Model:      os.Getenv("LLM_MODEL"),
		SchemaName: "verdict",
		Schema:     llm.VerdictSchema(),
	})
	if err != nil {
		logging.Fatalf("[validate-file] llm client: %v", err)
	}

	svc, err := validator.NewService(validator.Config{
		Completer: llmClient,
		Language:  os.Getenv("RESPONSE_LANGUAGE"),
		Model:     llmClient.Model(),
	})
	if err != nil {
		logging.Fatalf("[validate-file] validator: %v", err)
	}

	verdict, err := svc.Validate(ctx, validator.Input{
		Requirements:    *requirements,
		ValidExamples:   validText,
		InvalidExamples: invalidText,
		DocumentText:    documentText,
		Threshold:       float64(*percent) / 100,
	})
	if err != nil {
		logging.Fatalf("[validate-file] validate: %v", err)
	}

	out, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		logging.Fatalf("[validate-file] encode verdict: %v", err)
	}
	fmt.Println(string(out))
}

func extractAll(ctx context.Context, extractor *extract.Service, paths []string) (string, error) {
	var b strings.Builder
	for _, path := range paths {
		text, err := extractor.Extract(ctx, path)
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		b.WriteString(text)
		b.WriteString("\n\n---\n\n")
	}
	return b.String(), nil
}
