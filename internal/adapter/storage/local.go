// Package storage persists uploaded maintenance report documents.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// Compile-time check against the domain port.
var _ domain.ReportStore = (*LocalStore)(nil)

// LocalStore writes report files to a directory on disk and returns URLs
// under the configured base path.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a store rooted at dir. Saved files are referenced as
// baseURL + "/" + stored name.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save stores the content under a timestamped, sanitized name and returns the
// reference URL.
func (s *LocalStore) Save(ctx context.Context, fileName string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitize(fileName))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing report file: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

// sanitize strips path components and replaces spaces so the stored name is
// safe to embed in a URL.
func sanitize(name string) string {
	name = filepath.Base(name)
	return strings.ReplaceAll(name, " ", "_")
}
