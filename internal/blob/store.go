// Package blob abstracts attachment storage. The rest of the system only
// ever sees the opaque URL a store returns.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store uploads a file and returns an opaque URL for it.
type Store interface {
	Upload(ctx context.Context, fileName string, contents io.Reader) (string, error)
}

// LocalStore writes uploads to a directory on disk and returns URLs under
// a configured base path.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore prepares the upload directory.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload stores the contents under a collision-free name.
func (s *LocalStore) Upload(_ context.Context, fileName string, contents io.Reader) (string, error) {
	name := uuid.NewString() + sanitizeExt(fileName)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, contents); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

func sanitizeExt(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) > 10 {
		return ""
	}
	return ext
}
