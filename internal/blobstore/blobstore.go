package blobstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists attachment blobs under opaque references. The workflow only
// ever keeps the returned reference string; retrieval is by that reference.
type Store interface {
	Store(filename string, r io.Reader) (string, error)
	Open(ref string) (io.ReadCloser, error)
}

type diskStore struct {
	dir string
}

// NewDiskStore creates the backing directory and returns a filesystem store.
func NewDiskStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}
	return &diskStore{dir: dir}, nil
}

func (s *diskStore) Store(filename string, r io.Reader) (string, error) {
	ref := uuid.NewString()
	if ext := sanitizeExt(filepath.Ext(filename)); ext != "" {
		ref += ext
	}

	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *diskStore) Open(ref string) (io.ReadCloser, error) {
	// refs are generated server-side; reject anything that escapes the dir
	if ref == "" || ref != filepath.Base(ref) || strings.ContainsAny(ref, "/\\") {
		return nil, errors.New("invalid attachment reference")
	}
	return os.Open(filepath.Join(s.dir, ref))
}

func sanitizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, ch := range ext[1:] {
		if (ch < 'a' || ch > 'z') && (ch < '0' || ch > '9') {
			return ""
		}
	}
	return ext
}
