package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hetulpatel/DocValidator/internal/logging"
)

// stage writes an uploaded file into the upload dir under a generated name.
// The client filename contributes only its extension, so concurrent requests
// can never collide on staged paths.
func (s *Server) stage(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fmt.Errorf("no file header")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	path := filepath.Join(s.uploadDir, uuid.NewString()+ext)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		s.removeStaged(path)
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := dst.Close(); err != nil {
		s.removeStaged(path)
		return "", fmt.Errorf("close staged file: %w", err)
	}
	return path, nil
}

// removeStaged deletes a staged file, tolerating it already being gone.
func (s *Server) removeStaged(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Errorf("[server] remove staged file %s: %v", path, err)
	}
}
