// Package storage persists uploaded profile photos.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// PhotoStore saves a photo under name and returns the path recorded on the
// user row.
type PhotoStore interface {
	Save(ctx context.Context, name string, body io.ReadSeeker, contentType string) (string, error)
	Remove(ctx context.Context, path string) error
}

// FileName builds "<unix-millis>-<base name>" from an uploaded file name.
func FileName(now time.Time, original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}
