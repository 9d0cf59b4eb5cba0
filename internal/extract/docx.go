package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const documentXMLPath = "word/document.xml"

// DocxExtractor reads the paragraph text of a DOCX archive. Paragraphs are
// joined with newlines in document order.
type DocxExtractor struct{}

// Extract opens the DOCX at path and returns its paragraph text.
func (e *DocxExtractor) Extract(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("docx path is empty")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer archive.Close()

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == documentXMLPath {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx missing %s", documentXMLPath)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", documentXMLPath, err)
	}
	defer rc.Close()

	text, err := paragraphText(rc)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", documentXMLPath, err)
	}
	return text, nil
}

// paragraphText walks WordprocessingML and joins w:p contents with newlines.
// Only the character data inside w:t runs counts as text.
func paragraphText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inRunText  bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				current.Reset()
			case "t":
				inRunText = true
			case "tab":
				current.WriteByte('\t')
			case "br":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			case "t":
				inRunText = false
			}
		case xml.CharData:
			if inRunText {
				current.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}
