package blobstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty or escape the base directory.
var ErrInvalidKey = errors.New("invalid object key")

// Store is an object store addressed by slash-separated keys.
type Store interface {
	Put(key string, data []byte, contentType string) (string, error)
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
	KeyFromURL(url string) (string, bool)
}

// LocalStore keeps objects on the local filesystem and exposes them under a public URL prefix.
type LocalStore struct {
	basePath  string
	publicURL string
}

func NewLocalStore(basePath, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStore{
		basePath:  basePath,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// BasePath is the directory objects are written to.
func (s *LocalStore) BasePath() string {
	return s.basePath
}

func (s *LocalStore) pathFromKey(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// Put writes data under key and returns its public URL.
// The content type is not persisted; it is derived from the extension when served.
func (s *LocalStore) Put(key string, data []byte, contentType string) (string, error) {
	filePath, err := s.pathFromKey(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return "", err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return s.publicURL + "/" + strings.TrimPrefix(path.Clean("/"+key), "/"), nil
}

func (s *LocalStore) Open(key string) (io.ReadCloser, error) {
	filePath, err := s.pathFromKey(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s not found: %w", key, err)
		}
		return nil, err
	}
	return file, nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (s *LocalStore) Delete(key string) error {
	filePath, err := s.pathFromKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filePath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// KeyFromURL maps a URL returned by Put back to its key.
func (s *LocalStore) KeyFromURL(url string) (string, bool) {
	prefix := s.publicURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}

// ContentTypeFor guesses an image content type from a file name.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".webp":
		return "image/webp"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
