// Package images archives buoycam JPEGs on disk and produces scaled-down
// thumbnails for listing views.
package images

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Archive stores images under dir using the station/date layout
// <station>/<yyyy>/<mm>/<dd>/<yyyymmdd_hhmmss>.jpg.
type Archive struct {
	dir string
}

func NewArchive(dir string) *Archive {
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("Warning: could not create image archive directory: %v\n", err)
	}
	return &Archive{dir: dir}
}

// Store writes an image and returns its archive-relative path.
func (a *Archive) Store(stationID string, capturedAt time.Time, data []byte) (string, error) {
	capturedAt = capturedAt.UTC()
	rel := filepath.Join(
		stationID,
		capturedAt.Format("2006/01/02"),
		capturedAt.Format("20060102_150405")+".jpg",
	)
	path := filepath.Join(a.dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// Get reads an archived image by its archive-relative path. Paths that
// escape the archive root are rejected.
func (a *Archive) Get(rel string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid image path %q", rel)
	}
	return os.ReadFile(filepath.Join(a.dir, clean))
}
