package mediacache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// BlobStore holds fetched media payloads on disk under content-addressed
// filenames, with duplicate detection across restarts.
type BlobStore struct {
	dir   string
	known map[string]string
	mu    sync.RWMutex
}

// NewBlobStore creates the store directory if needed and indexes any blobs
// already present.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	store := &BlobStore{
		dir:   dir,
		known: make(map[string]string),
	}
	if err := store.scanExisting(); err != nil {
		return nil, fmt.Errorf("failed to scan existing blobs: %w", err)
	}
	return store, nil
}

func (s *BlobStore) scanExisting() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".tmp") {
			continue
		}
		key := strings.TrimSuffix(name, filepath.Ext(name))
		s.known[key] = name
	}
	return nil
}

// Key derives the content-addressed key for a source URL
func Key(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return hex.EncodeToString(sum[:16])
}

// Has reports whether a blob for the key is already stored, and its filename
func (s *BlobStore) Has(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.known[key]
	return name, ok
}

// Save writes a blob atomically and returns the stored filename. A second
// save under an existing key overwrites the blob; last write wins.
func (s *BlobStore) Save(key string, r io.Reader, contentType string) (string, error) {
	name := key + extensionFor(contentType)
	filename := filepath.Join(s.dir, name)

	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write blob data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	s.mu.Lock()
	s.known[key] = name
	s.mu.Unlock()

	return name, nil
}

// Remove deletes a stored blob by key
func (s *BlobStore) Remove(key string) {
	s.mu.Lock()
	name, ok := s.known[key]
	delete(s.known, key)
	s.mu.Unlock()

	if ok {
		os.Remove(filepath.Join(s.dir, name))
	}
}

// Open returns a reader over a stored blob with its content type
func (s *BlobStore) Open(name string) (io.ReadCloser, string, error) {
	// stored names are key+ext, never paths
	if name != filepath.Base(name) {
		return nil, "", fmt.Errorf("invalid blob name %q", name)
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, "", err
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return f, contentType, nil
}

// Dir returns the store directory
func (s *BlobStore) Dir() string {
	return s.dir
}

// Count returns the number of stored blobs
func (s *BlobStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.known)
}

func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	case strings.Contains(contentType, "mp4"), strings.Contains(contentType, "video"):
		return ".mp4"
	default:
		return ".jpg"
	}
}
