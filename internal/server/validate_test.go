package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/hetulpatel/DocValidator/internal/validator"
)

type fakeValidator struct {
	verdict *validator.Verdict
	err     error
	calls   int
	inputs  []validator.Input
}

func (f *fakeValidator) Validate(ctx context.Context, in validator.Input) (*validator.Verdict, error) {
	f.calls++
	f.inputs = append(f.inputs, in)
	return f.verdict, f.err
}

func (f *fakeValidator) CacheKey(in validator.Input) string {
	return "test-key"
}

// fakeExtractor returns the staged file contents as the extracted text.
// Content containing CORRUPT simulates an unreadable document.
type fakeExtractor struct {
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, path string) (string, error) {
	f.calls++
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := string(data)
	if strings.Contains(text, "CORRUPT") {
		return "", fmt.Errorf("pdftotext failed: exit status 1")
	}
	return text, nil
}

type filePart struct {
	field    string
	filename string
	content  string
}

func buildMultipart(t *testing.T, fields map[string]string, files []filePart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, val := range fields {
		if err := mw.WriteField(key, val); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	for _, fp := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fp.field, fp.filename))
		header.Set("Content-Type", "application/octet-stream")
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("create part %s: %v", fp.field, err)
		}
		if _, err := io.WriteString(part, fp.content); err != nil {
			t.Fatalf("write part %s: %v", fp.field, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

type testEnv struct {
	server    *Server
	validator *fakeValidator
	extractor *fakeExtractor
	uploadDir string
}

func newTestEnv(t *testing.T, verdict *validator.Verdict, validateErr error) *testEnv {
	t.Helper()
	fv := &fakeValidator{verdict: verdict, err: validateErr}
	fe := &fakeExtractor{}
	uploadDir := t.TempDir()
	srv, err := New(Config{
		Validator: fv,
		Extractor: fe,
		UploadDir: uploadDir,
		Model:     "llama3.1:8b",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testEnv{server: srv, validator: fv, extractor: fe, uploadDir: uploadDir}
}

func (e *testEnv) post(t *testing.T, fields map[string]string, files []filePart) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := buildMultipart(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, "/validate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	e.server.Routes().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) assertUploadDirEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(e.uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Errorf("staged files left behind: %v", names)
	}
}

func decodeVerdict(t *testing.T, rec *httptest.ResponseRecorder) *validator.Verdict {
	t.Helper()
	var v validator.Verdict
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return &v
}

func defaultFields() map[string]string {
	return map[string]string{
		"requirements": "Must include a signature and a date.",
		"precent":      "70",
	}
}

func docFile(content string) filePart {
	return filePart{field: "document", filename: "contract.docx", content: content}
}

func TestValidateHappyPath(t *testing.T) {
	want := &validator.Verdict{Valid: false, Reasons: []string{"Missing signature section"}}
	env := newTestEnv(t, want, nil)

	rec := env.post(t, defaultFields(), []filePart{docFile("Dated 2024-01-01, unsigned.")})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := decodeVerdict(t, rec); !reflect.DeepEqual(got, want) {
		t.Errorf("verdict = %+v, want %+v", got, want)
	}

	if env.validator.calls != 1 {
		t.Fatalf("validator called %d times, want 1", env.validator.calls)
	}
	in := env.validator.inputs[0]
	if in.Requirements != "Must include a signature and a date." {
		t.Errorf("requirements = %q", in.Requirements)
	}
	if in.DocumentText != "Dated 2024-01-01, unsigned." {
		t.Errorf("document text = %q", in.DocumentText)
	}
	if in.Threshold != 0.7 {
		t.Errorf("threshold = %v, want 0.7", in.Threshold)
	}
	env.assertUploadDirEmpty(t)
}

func TestValidateMissingRequirements(t *testing.T) {
	env := newTestEnv(t, &validator.Verdict{Valid: true}, nil)

	for _, requirements := range []string{"", "   "} {
		rec := env.post(t,
			map[string]string{"requirements": requirements, "precent": "70"},
			[]filePart{docFile("text")},
		)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("requirements=%q: status = %d, want 400", requirements, rec.Code)
		}
		verdict := decodeVerdict(t, rec)
		if verdict.Valid || len(verdict.Reasons) != 1 {
			t.Errorf("requirements=%q: body = %+v", requirements, verdict)
		}
	}
	if env.extractor.calls != 0 {
		t.Errorf("extraction ran despite missing requirements (%d calls)", env.extractor.calls)
	}
	if env.validator.calls != 0 {
		t.Errorf("validation ran despite missing requirements (%d calls)", env.validator.calls)
	}
	env.assertUploadDirEmpty(t)
}

func TestValidateMissingDocument(t *testing.T) {
	env := newTestEnv(t, &validator.Verdict{Valid: true}, nil)

	rec := env.post(t, defaultFields(), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.validator.calls != 0 {
		t.Error("validation ran despite missing document")
	}
	env.assertUploadDirEmpty(t)
}

func TestValidatePercentValidation(t *testing.T) {
	env := newTestEnv(t, &validator.Verdict{Valid: true}, nil)

	for _, precent := range []string{"", "abc", "101", "-1", "7.5"} {
		rec := env.post(t,
			map[string]string{"requirements": "anything", "precent": precent},
			[]filePart{docFile("text")},
		)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("precent=%q: status = %d, want 400", precent, rec.Code)
		}
	}
	if env.validator.calls != 0 {
		t.Errorf("validation ran despite bad percentage (%d calls)", env.validator.calls)
	}
	env.assertUploadDirEmpty(t)

	// boundary values are accepted
	for _, precent := range []string{"0", "100"} {
		rec := env.post(t,
			map[string]string{"requirements": "anything", "precent": precent},
			[]filePart{docFile("text")},
		)
		if rec.Code != http.StatusOK {
			t.Errorf("precent=%q: status = %d, want 200", precent, rec.Code)
		}
	}
}

func TestValidateExamplesAccumulateWithSeparator(t *testing.T) {
	env := newTestEnv(t, &validator.Verdict{Valid: true, Reasons: []string{"score 1.00"}}, nil)

	rec := env.post(t, defaultFields(), []filePart{
		docFile("the document"),
		{field: "valid_examples", filename: "good1.docx", content: "first good"},
		{field: "valid_examples", filename: "good2.docx", content: "second good"},
		{field: "invalid_examples", filename: "bad.docx", content: "one bad"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	in := env.validator.inputs[0]
	if want := "first good\n\n---\n\nsecond good\n\n---\n\n"; in.ValidExamples != want {
		t.Errorf("valid examples = %q, want %q", in.ValidExamples, want)
	}
	if want := "one bad\n\n---\n\n"; in.InvalidExamples != want {
		t.Errorf("invalid examples = %q, want %q", in.InvalidExamples, want)
	}
	env.assertUploadDirEmpty(t)
}

func TestValidateSkipsEmptyFilenameExamples(t *testing.T) {
	env := newTestEnv(t, &validator.Verdict{Valid: true, Reasons: []string{"score 1.00"}}, nil)

	rec := env.post(t, defaultFields(), []filePart{
		docFile("the document"),
		{field: "valid_examples", filename: "", content: ""},
		{field: "invalid_examples", filename: "", content: ""},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	// only the primary document went through extraction
	if env.extractor.calls != 1 {
		t.Errorf("extractor called %d times, want 1", env.extractor.calls)
	}
	in := env.validator.inputs[0]
	if in.ValidExamples != "" || in.InvalidExamples != "" {
		t.Errorf("empty-filename entries produced text: %q / %q", in.ValidExamples, in.InvalidExamples)
	}
	env.assertUploadDirEmpty(t)
}

func TestValidateDocumentExtractionFailure(t *testing.T) {
	env := newTestEnv(t, &validator.Verdict{Valid: true}, nil)

	rec := env.post(t, defaultFields(), []filePart{docFile("CORRUPT bytes")})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	verdict := decodeVerdict(t, rec)
	if verdict.Valid || len(verdict.Reasons) != 1 || !strings.Contains(verdict.Reasons[0], "pdftotext failed") {
		t.Errorf("body = %+v, want failure message", verdict)
	}
	if env.validator.calls != 0 {
		t.Error("validation ran despite extraction failure")
	}
	env.assertUploadDirEmpty(t)
}

func TestValidateExampleFailureNamesTheSet(t *testing.T) {
	env := newTestEnv(t, &validator.Verdict{Valid: true}, nil)

	rec := env.post(t, defaultFields(), []filePart{
		docFile("fine"),
		{field: "valid_examples", filename: "bad.docx", content: "CORRUPT"},
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	verdict := decodeVerdict(t, rec)
	if len(verdict.Reasons) != 1 || !strings.Contains(verdict.Reasons[0], "valid example") {
		t.Errorf("reason %q does not name the failing set", verdict.Reasons)
	}
	env.assertUploadDirEmpty(t)

	rec = env.post(t, defaultFields(), []filePart{
		docFile("fine"),
		{field: "invalid_examples", filename: "bad.docx", content: "CORRUPT"},
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	verdict = decodeVerdict(t, rec)
	if len(verdict.Reasons) != 1 || !strings.Contains(verdict.Reasons[0], "invalid example") {
		t.Errorf("reason %q does not name the failing set", verdict.Reasons)
	}
	env.assertUploadDirEmpty(t)
}

func TestValidateModelTransportFailure(t *testing.T) {
	env := newTestEnv(t, nil, errors.New("model call: connection refused"))

	rec := env.post(t, defaultFields(), []filePart{docFile("fine")})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	env.assertUploadDirEmpty(t)
}

func TestValidateMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, &validator.Verdict{Valid: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/validate", nil)
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestIndexServesPage(t *testing.T) {
	env := newTestEnv(t, &validator.Verdict{Valid: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<form") {
		t.Error("index page does not contain the upload form")
	}
}

func TestStagingUsesGeneratedNames(t *testing.T) {
	env := newTestEnv(t, &validator.Verdict{Valid: true}, nil)

	// extraction dispatches on extension, so staging must keep it while
	// replacing the client-controlled name
	fh := fileHeaderFor(t, "../../../escape.docx", "content")
	path, err := env.server.stage(fh)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	defer env.server.removeStaged(path)

	if !strings.HasPrefix(path, env.uploadDir) {
		t.Errorf("staged outside upload dir: %s", path)
	}
	if strings.Contains(path, "escape") {
		t.Errorf("client filename leaked into staged path: %s", path)
	}
	if !strings.HasSuffix(path, ".docx") {
		t.Errorf("extension lost during staging: %s", path)
	}
}

func fileHeaderFor(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()
	body, contentType := buildMultipart(t, nil, []filePart{{field: "f", filename: filename, content: content}})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	headers := req.MultipartForm.File["f"]
	if len(headers) != 1 {
		t.Fatalf("got %d file headers, want 1", len(headers))
	}
	return headers[0]
}
