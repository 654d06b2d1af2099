// Package extract turns uploaded files into plain text fed to the
// conversation as a user message. Dispatch is by content type first, file
// extension second. Rich formats (PDF, DOCX, spreadsheets, OCR) are deliberate
// injection points: pass a custom Extractor to handle them; the default built
// here covers plain-text formats and degrades images to a metadata line.
package extract

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	apperrors "aix-chat/backend/internal/errors"
)

// Extractor produces the text content of one uploaded file.
type Extractor interface {
	Extract(name, contentType string, size int64, r io.Reader) (string, error)
}

// maxTextBytes caps how much of an uploaded file is read as text.
const maxTextBytes = 4 << 20

var textExtensions = map[string]struct{}{
	".txt":      {},
	".md":       {},
	".markdown": {},
	".csv":      {},
	".log":      {},
	".json":     {},
}

type defaultExtractor struct{}

// NewDefault returns the built-in extractor.
func NewDefault() Extractor {
	return defaultExtractor{}
}

func (defaultExtractor) Extract(name, contentType string, size int64, r io.Reader) (string, error) {
	kind := strings.ToLower(contentType)
	ext := strings.ToLower(filepath.Ext(name))

	switch {
	case strings.HasPrefix(kind, "text/"), kind == "application/json":
		return readText(r)
	case strings.HasPrefix(kind, "image/"):
		// No OCR built in: degrade to the metadata line the UI can still use.
		return fmt.Sprintf("Image file: %s (%d KB)", filepath.Base(name), (size+512)/1024), nil
	}

	if _, ok := textExtensions[ext]; ok {
		return readText(r)
	}

	return "", fmt.Errorf("%w: no extractor for %q (%s)", apperrors.ErrUnsupported, filepath.Base(name), kind)
}

func readText(r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxTextBytes))
	if err != nil {
		return "", fmt.Errorf("could not read file: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
