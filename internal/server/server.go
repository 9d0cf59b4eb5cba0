// Package server exposes the validation pipeline over HTTP: one static page
// and one multipart endpoint that stages uploads, extracts text, and asks the
// model for a verdict.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/hetulpatel/DocValidator/internal/logging"
	"github.com/hetulpatel/DocValidator/internal/storage/sqlite"
	"github.com/hetulpatel/DocValidator/internal/validator"
)

//go:embed web/index.html
var webFS embed.FS

// Validator produces a verdict for one extracted document.
type Validator interface {
	Validate(ctx context.Context, in validator.Input) (*validator.Verdict, error)
	CacheKey(in validator.Input) string
}

// Extractor turns a staged file into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Config wires the pipeline. Store and Writer are optional sinks.
type Config struct {
	Validator Validator
	Extractor Extractor
	UploadDir string
	Model     string
	Store     *sqlite.Store
	Writer    *kafkago.Writer
}

// Server handles the validation HTTP surface.
type Server struct {
	validator Validator
	extractor Extractor
	uploadDir string
	model     string
	store     *sqlite.Store
	writer    *kafkago.Writer
}

// New creates a server from config.
func New(cfg Config) (*Server, error) {
	if cfg.Validator == nil {
		return nil, fmt.Errorf("server: validator is required")
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("server: extractor is required")
	}
	uploadDir := cfg.UploadDir
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &Server{
		validator: cfg.Validator,
		extractor: cfg.Extractor,
		uploadDir: uploadDir,
		model:     cfg.Model,
		store:     cfg.Store,
		writer:    cfg.Writer,
	}, nil
}

// Routes returns the HTTP mux for the service.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/validate", s.handleValidate)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		http.Error(w, "front-end page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// writeVerdict sends a verdict-shaped JSON body. Errors share the same shape
// so every caller-visible outcome is {valid, reasons}.
func writeVerdict(w http.ResponseWriter, status int, verdict *validator.Verdict) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(verdict); err != nil {
		logging.Errorf("[server] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeVerdict(w, status, &validator.Verdict{Valid: false, Reasons: []string{reason}})
}
