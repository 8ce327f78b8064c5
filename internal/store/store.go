// Package store names and persists rendered artifacts under the configured
// export directory.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"pdfexport/internal/infra/logging"
)

// StoredFile describes one persisted artifact.
type StoredFile struct {
	Filename  string
	Path      string
	SizeBytes int
	Size      string
}

// Store writes artifacts into a fixed export directory. The directory is
// injected at construction so tests can redirect output.
type Store struct {
	dir string
}

// New returns a Store writing into dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the export directory.
func (s *Store) Dir() string {
	return s.dir
}

// Filename derives a collision-free artifact name: the sanitized base, an
// underscore, a fresh UUID and the .pdf extension. The sanitized prefix can
// never traverse paths since separators are replaced.
func Filename(baseName string) string {
	return SanitizeBaseName(baseName) + "_" + uuid.NewString() + ".pdf"
}

// SanitizeBaseName keeps alphanumerics, '_' and '-'; every other rune
// becomes '_'.
func SanitizeBaseName(baseName string) string {
	var b strings.Builder
	b.Grow(len(baseName))
	for _, r := range baseName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Persist ensures the export directory exists and writes data under
// filename. Directory-creation or write failure aborts the request.
func (s *Store) Persist(data []byte, filename string) (StoredFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("create export directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return StoredFile{}, fmt.Errorf("write %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	logging.Info("File written", "path", abs, "bytes", len(data))

	return StoredFile{
		Filename:  filename,
		Path:      abs,
		SizeBytes: len(data),
		Size:      SizeString(len(data)),
	}, nil
}

// SizeString classifies a byte count for humans: "0 KB" for empty content,
// "1 KB" up to one kilobyte, rounded KB below a megabyte, MB with two
// decimals beyond that.
func SizeString(sizeBytes int) string {
	if sizeBytes == 0 {
		return "0 KB"
	}
	kb := float64(sizeBytes) / 1024
	if kb < 1 {
		return "1 KB"
	}
	if kb < 1024 {
		return fmt.Sprintf("%.0f KB", kb)
	}
	return fmt.Sprintf("%.2f MB", kb/1024)
}
