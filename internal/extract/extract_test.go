package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractUnsupportedFormat(t *testing.T) {
	svc := NewService()
	for _, name := range []string{"notes.txt", "archive.zip", "noextension"} {
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte("irrelevant"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		_, err := svc.Extract(context.Background(), path)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Extract(%q) error = %v, want ErrUnsupportedFormat", name, err)
		}
	}
}

func TestExtractEmptyPath(t *testing.T) {
	if _, err := NewService().Extract(context.Background(), ""); err == nil {
		t.Error("empty path accepted")
	}
}

func TestExtractDispatchesDocx(t *testing.T) {
	path := writeDocx(t, t.TempDir(), "Hello from the test")
	text, err := NewService().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "Hello from the test" {
		t.Errorf("Extract = %q", text)
	}
}
