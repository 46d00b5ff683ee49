package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FilesystemStore writes objects under a base directory and resolves URLs
// against a public base URL that serves the same directory.
type FilesystemStore struct {
	baseDir   string
	publicURL string
}

func NewFilesystemStore(baseDir, publicURL string) (*FilesystemStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	u, err := url.Parse(publicURL)
	if err != nil || u.Scheme == "" {
		return nil, fmt.Errorf("invalid public URL: %q", publicURL)
	}

	return &FilesystemStore{
		baseDir:   baseDir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Write stores the object at baseDir/key, creating parent directories.
func (fs *FilesystemStore) Write(ctx context.Context, key string, r io.Reader) error {
	p, err := fs.objectPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	return f.Close()
}

// ResolveURL joins the key onto the public base URL.
func (fs *FilesystemStore) ResolveURL(key string) (string, error) {
	if _, err := fs.objectPath(key); err != nil {
		return "", err
	}
	return fs.publicURL + "/" + path.Clean(key), nil
}

func (fs *FilesystemStore) objectPath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty key")
	}
	p := filepath.Join(fs.baseDir, filepath.FromSlash(key))

	// Security: prevent directory traversal
	base := filepath.Clean(fs.baseDir)
	if p != base && !strings.HasPrefix(p, base+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid key: path traversal detected")
	}
	return p, nil
}
