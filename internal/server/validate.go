package server

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hetulpatel/DocValidator/internal/logging"
	"github.com/hetulpatel/DocValidator/internal/queue"
	"github.com/hetulpatel/DocValidator/internal/storage/sqlite"
	"github.com/hetulpatel/DocValidator/internal/validator"
)

const (
	maxMultipartMemory = 32 << 20 // 32 MB
	exampleSeparator   = "\n\n---\n\n"
)

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "only POST is supported")
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	ctx := r.Context()
	started := time.Now()

	requirements := strings.TrimSpace(r.FormValue("requirements"))
	if requirements == "" {
		writeError(w, http.StatusBadRequest, "No validation requirements were provided.")
		return
	}

	docHeaders := r.MultipartForm.File["document"]
	if len(docHeaders) == 0 || docHeaders[0].Filename == "" {
		writeError(w, http.StatusBadRequest, "No document was uploaded for validation.")
		return
	}

	threshold, err := parsePercent(r.FormValue("precent"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	validText, err := s.extractExamples(ctx, r.MultipartForm.File["valid_examples"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error while processing a valid example: %v", err))
		return
	}
	invalidText, err := s.extractExamples(ctx, r.MultipartForm.File["invalid_examples"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error while processing an invalid example: %v", err))
		return
	}

	docPath, err := s.stage(docHeaders[0])
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Could not store the document: %v", err))
		return
	}
	documentText, err := s.extractor.Extract(ctx, docPath)
	// the staged document goes away no matter how extraction went
	s.removeStaged(docPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Could not read the document: %v", err))
		return
	}

	in := validator.Input{
		Requirements:    requirements,
		ValidExamples:   validText,
		InvalidExamples: invalidText,
		DocumentText:    documentText,
		Threshold:       threshold,
	}
	verdict, err := s.validator.Validate(ctx, in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Model completion failed: %v", err))
		return
	}

	s.record(ctx, in, verdict, time.Since(started))
	writeVerdict(w, http.StatusOK, verdict)
}

// extractExamples stages, extracts, and immediately unstages every example in
// one set. Entries with no filename are empty form fields, not errors. The
// text of each document is followed by a separator block.
func (s *Server) extractExamples(ctx context.Context, headers []*multipart.FileHeader) (string, error) {
	var b strings.Builder
	for _, fh := range headers {
		if fh == nil || fh.Filename == "" {
			continue
		}
		path, err := s.stage(fh)
		if err != nil {
			return "", err
		}
		text, err := s.extractor.Extract(ctx, path)
		s.removeStaged(path)
		if err != nil {
			return "", err
		}
		b.WriteString(text)
		b.WriteString(exampleSeparator)
	}
	return b.String(), nil
}

// parsePercent converts the form percentage into a [0,1] threshold. Anything
// non-numeric or outside 0..100 is rejected, never clamped.
func parsePercent(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("A passing percentage is required.")
	}
	percent, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("The passing percentage must be an integer, got %q.", raw)
	}
	if percent < 0 || percent > 100 {
		return 0, fmt.Errorf("The passing percentage must be between 0 and 100, got %d.", percent)
	}
	return float64(percent) / 100, nil
}

// record feeds the optional audit and event sinks. Failures are logged, never
// surfaced to the caller.
func (s *Server) record(ctx context.Context, in validator.Input, verdict *validator.Verdict, elapsed time.Duration) {
	if s.store == nil && s.writer == nil {
		return
	}
	hash := s.validator.CacheKey(in)

	if s.store != nil {
		rec := &sqlite.VerdictRecord{
			RequestHash:  hash,
			Requirements: in.Requirements,
			Threshold:    in.Threshold,
			Valid:        verdict.Valid,
			Reasons:      verdict.Reasons,
			Model:        s.model,
			DurationMS:   elapsed.Milliseconds(),
		}
		if err := s.store.InsertVerdict(ctx, rec); err != nil {
			logging.Errorf("[server] audit insert: %v", err)
		}
	}

	if s.writer != nil {
		event := queue.VerdictEvent{
			RequestHash: hash,
			Valid:       verdict.Valid,
			Reasons:     verdict.Reasons,
			Model:       s.model,
			Threshold:   in.Threshold,
			DurationMS:  elapsed.Milliseconds(),
		}
		if err := queue.PublishVerdict(ctx, s.writer, event); err != nil {
			logging.Errorf("[server] publish verdict event: %v", err)
		}
	}
}
